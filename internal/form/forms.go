package form

// Form is one of SignupForm, LoginForm, ContactForm, ForgotPasswordForm or
// VerificationForm. The interface is sealed.
type Form interface {
	FormMode() Mode
	sealed()
}

type SignupForm struct {
	Username          string `form:"username" json:"username" validate:"required,min=3,max=32"`
	Email             string `form:"email" json:"email" validate:"required,email,max=254"`
	Password          string `form:"password" json:"password" validate:"required,min=8,max=72,maxbytes=72"`
	ConfirmPassword   string `form:"confirmPassword" json:"confirmPassword" validate:"required,eqfield=Password"`
	SignForNewsLetter bool   `form:"signForNewsLetter" json:"signForNewsLetter"`
}

type LoginForm struct {
	Email      string `form:"email" json:"email" validate:"required,email,max=254"`
	Password   string `form:"password" json:"password" validate:"required,max=72,maxbytes=72"`
	RememberMe bool   `form:"rememberMe" json:"rememberMe"`
}

type ContactForm struct {
	Name    string `form:"name" json:"name" validate:"required,max=100"`
	Email   string `form:"email" json:"email" validate:"required,email,max=254"`
	Subject string `form:"subject" json:"subject" validate:"required,max=150"`
	Message string `form:"message" json:"message" validate:"required,max=5000"`
}

type ForgotPasswordForm struct {
	Email string `form:"email" json:"email" validate:"required,email,max=254"`
}

type VerificationForm struct {
	VerificationCode string `form:"verificationCode" json:"verificationCode" validate:"required,len=6,numeric"`
}

func (*SignupForm) FormMode() Mode         { return ModeSignup }
func (*LoginForm) FormMode() Mode          { return ModeLogin }
func (*ContactForm) FormMode() Mode        { return ModeContact }
func (*ForgotPasswordForm) FormMode() Mode { return ModeForgotPassword }
func (*VerificationForm) FormMode() Mode   { return ModeLoginVerification }

func (*SignupForm) sealed()         {}
func (*LoginForm) sealed()          {}
func (*ContactForm) sealed()        {}
func (*ForgotPasswordForm) sealed() {}
func (*VerificationForm) sealed()   {}

// Blank returns an empty form for m.
func Blank(m Mode) Form {
	switch m {
	case ModeSignup:
		return &SignupForm{}
	case ModeLogin:
		return &LoginForm{}
	case ModeContact:
		return &ContactForm{}
	case ModeForgotPassword:
		return &ForgotPasswordForm{}
	case ModeLoginVerification:
		return &VerificationForm{}
	default:
		return nil
	}
}
