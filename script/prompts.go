package script

import (
	"fmt"

	"minutemind/types"
)

// scriptPreamble instructs the model to answer with exactly one JSON object
// in the schema the parser expects.
const scriptPreamble = `You are an educational video script writer. Always respond with a single JSON object that conforms to this JSON schema:

{
  "script": {
    "topic": string,
    "duration_minutes": integer,
    "scenes": [
      {
        "scene_id": string,
        "title": string,
        "visual": string,
        "narration": string,
        "duration_seconds": integer
      }, ...
    ]
  }
}

Do not include any markdown fencing or additional commentary.`

// buildScriptPrompt encodes the request into the user turn of the chat.
func buildScriptPrompt(req types.ScriptRequest) string {
	return fmt.Sprintf(`Create a concise explainer video script about %q.
Target duration: %d minutes.
Tone: %s.
Use 3-5 scenes with meaningful visuals and crisp narration.
Each narration block must stay under 90 words.`,
		req.Topic, req.DurationMinutes, req.Tone)
}
