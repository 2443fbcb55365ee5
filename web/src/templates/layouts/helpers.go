package layouts

const siteName = "IB Coder"

// CalculateTitle returns the document title for a page.
func CalculateTitle(title string) string {
	if title != "" {
		return title + " | " + siteName
	}
	return siteName
}
