package llm

import (
	"encoding/base64"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/portfolio-grader/constants"
)

// ImageDataURL encodes data as a data URI. The declared MIME type is used verbatim;
// when it is empty the type is derived from the filename extension.
func ImageDataURL(data []byte, mimeType, filename string) string {
	mt := strings.TrimSpace(mimeType)
	if mt == "" {
		mt = constants.MimeForExt(filepath.Ext(filename))
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
}
