package conversation

// Response is what the interpreter returns for one conversational turn.
// Suggestions are plain utterances the client may offer as quick replies;
// resubmitting one is the same as typing it.
type Response struct {
	Text        string         `json:"text"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Confirm     *ConfirmAction `json:"confirm,omitempty"`
}

// ConfirmAction is a data-only command descriptor. The caller resolves it
// through the commit API; the DraftID pins the exact draft snapshot the
// response described, so a turn that raced past this response cannot be
// saved under its label.
type ConfirmAction struct {
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	SessionID string `json:"sessionId"`
	DraftID   string `json:"draftId"`
}

const confirmKindSave = "save"

var helpSuggestions = []string{
	"Create sale to ABC Corp for 10 laptops at ₹50000",
	"Purchase from XYZ Traders for 5 chairs at ₹1200",
	"Add party Sunrise Traders GSTIN 27AAPFU0939F1ZV",
	"Add item Laptop Stand HSN 8473 at 1500",
}

var modifySuggestions = []string{
	"Change GST to 5%",
	"Update quantity to 20",
	"Change price to 45000",
}

func helpResponse() Response {
	return Response{
		Text: "I didn't catch that. I can record sales, purchases, parties and items. " +
			"Try one of the examples below.",
		Suggestions: helpSuggestions,
	}
}

func nothingToModifyResponse() Response {
	return Response{
		Text:        "There is no draft to modify right now. Start one first, for example:",
		Suggestions: helpSuggestions,
	}
}

func modifyGuidanceResponse() Response {
	return Response{
		Text: "I can change this draft's GST, quantity or price. " +
			"Tell me the new value, for example:",
		Suggestions: modifySuggestions,
	}
}
