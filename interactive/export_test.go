package interactive

// SetBrowserOpener swaps the browser launcher and returns a restore func.
func SetBrowserOpener(open func(url string) error) func() {
	prev := openBrowser
	openBrowser = open
	return func() { openBrowser = prev }
}
