package styles

import "strings"

// FillerSubject replaces empty user input so providers never receive a
// prompt made only of style keywords.
const FillerSubject = "beautiful scene"

// ConvertSubject is the reconstruction prompt used when converting an
// uploaded image; no vision step describes the upload.
const ConvertSubject = "Beautiful scene transformed into intricate paper cutting art, preserving the original composition and mood"

// BuildPrompt combines user text with the style template.
func BuildPrompt(userText string, style StyleConfig) string {
	subject := strings.Join(strings.Fields(userText), " ")
	if subject == "" {
		subject = FillerSubject
	}
	return style.Prompt(subject)
}
