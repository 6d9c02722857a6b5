// Package render owns presentation concerns: the SVG badge and the static
// country enrichment table. It consumes plain data from the services and
// never touches the stores.
package render

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// BadgeContentType is the MIME type badge responses are served with.
const BadgeContentType = "image/svg+xml"

// Badge renders the visit badge: a grey "VISITED" label and the formatted
// count on a blue field.
func Badge(count int64) string {
	countStr := humanize.Comma(count)

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="110" height="20" role="img" aria-label="Views: %[1]s">
  <linearGradient id="s" x2="0" y2="100%%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r">
    <rect width="110" height="20" rx="3" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="65" height="20" fill="#555"/>
    <rect x="65" width="45" height="20" fill="#007acc"/>
    <rect width="110" height="20" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" text-rendering="geometricPrecision" font-size="110">
    <text aria-hidden="true" x="335" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="550">VIEWS</text>
    <text x="335" y="140" transform="scale(.1)" fill="#fff" textLength="550">VISITED</text>
    <text aria-hidden="true" x="875" y="150" fill="#010101" fill-opacity=".3" transform="scale(.1)" textLength="350">%[1]s</text>
    <text x="875" y="140" transform="scale(.1)" fill="#fff" textLength="350">%[1]s</text>
  </g>
</svg>`, countStr)
}
