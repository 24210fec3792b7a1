package theme

import (
	"fmt"
	"io"
)

// Banner returns the CLI banner.
func Banner() string {
	const cyan = "\033[36m"
	const green = "\033[32m"
	const reset = "\033[0m"

	return "" +
		green + "  ┌─────────────────────────────┐\n" + reset +
		green + "  │" + reset + "  " + cyan + "T W E E T G A T E" + reset + "          " + green + "│\n" + reset +
		green + "  └─────────────────────────────┘\n" + reset +
		"   filter first, then act ✦\n"
}

// PrintBanner writes the banner to w.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, Banner())
}
