package analyzer

import (
	"bytes"
	"strings"
)

// VersionUnknown is reported when the leading declaration matches no known doctype.
const VersionUnknown = "unknown"

// doctypes maps a lowercased, trimmed doctype declaration to its label.
// Lookups are exact; whitespace or quoting variants fall through to VersionUnknown.
var doctypes = map[string]string{
	`<!doctype html>`: "HTML 5",
	`<!doctype html public "-//w3c//dtd html 4.01//en" "http://www.w3.org/tr/html4/strict.dtd">`: "HTML 4.01 Strict",
	`<!doctype html public "-//w3c//dtd html 4.01 transitional//en" "http://www.w3.org/tr/html4/loose.dtd">`: "HTML 4.01 Transitional",
	`<!doctype html public "-//w3c//dtd html 4.01 frameset//en" "http://www.w3.org/tr/html4/frameset.dtd">`: "HTML 4.01 Frameset",
	`<!doctype html public "-//w3c//dtd xhtml 1.0 strict//en" "http://www.w3.org/tr/xhtml1/dtd/xhtml1-strict.dtd">`: "XHTML 1.0 Strict",
	`<!doctype html public "-//w3c//dtd xhtml 1.0 transitional//en" "http://www.w3.org/tr/xhtml1/dtd/xhtml1-transitional.dtd">`: "XHTML 1.0 Transitional",
	`<!doctype html public "-//w3c//dtd xhtml 1.0 frameset//en" "http://www.w3.org/tr/xhtml1/dtd/xhtml1-frameset.dtd">`: "XHTML 1.0 Frameset",
	`<!doctype html public "-//w3c//dtd xhtml 1.1//en" "http://www.w3.org/tr/xhtml11/dtd/xhtml11.dtd">`: "XHTML 1.1",
}

// DetectVersion labels the document by the text up to and including its first '>'.
func DetectVersion(body []byte) string {
	end := bytes.IndexByte(body, '>')
	if end < 0 {
		return VersionUnknown
	}
	decl := strings.TrimSpace(strings.ToLower(string(body[:end+1])))
	if label, ok := doctypes[decl]; ok {
		return label
	}
	return VersionUnknown
}
