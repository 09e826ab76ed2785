package overlay

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/godilite/survey-form/internal/survey"
	"github.com/google/uuid"
)

type Kind string

const (
	KindResult Kind = "result"
	KindError  Kind = "error"
)

const (
	ColorAffirmative = "green"
	ColorNegative    = "red"
)

var (
	UnansweredMessage = []string{
		"Not all questions are answered.",
		"Please answer all questions before submitting.",
	}
	TransmissionMessage = []string{
		"An error occurred while processing your request.",
		"Please try again later.",
	}
	InFlightMessage = []string{
		"Your previous submission is still being processed.",
		"Please wait for the result.",
	}
)

// Overlay is a dismissible card shown on top of the rating page.
type Overlay struct {
	ID           string   `json:"id"`
	Kind         Kind     `json:"kind"`
	HeadingColor string   `json:"heading_color"`
	Lines        []string `json:"lines"`
	Percentage   int      `json:"percentage,omitempty"`
}

// RenderResult builds the overlay for a prediction.
func RenderResult(result survey.PredictionResult) Overlay {
	pct := result.Percentage()
	o := Overlay{
		ID:         uuid.NewString(),
		Kind:       KindResult,
		Percentage: pct,
	}
	if result.Prediction {
		o.HeadingColor = ColorAffirmative
		o.Lines = []string{fmt.Sprintf("Good news - you are happy! We're %d%% sure 😃", pct)}
	} else {
		o.HeadingColor = ColorNegative
		o.Lines = []string{fmt.Sprintf("Oh no, you seem to be unhappy! At least for %d%% 😟", pct)}
	}
	return o
}

// RenderError builds an error overlay; each line is shown on its own row.
func RenderError(lines ...string) Overlay {
	return Overlay{
		ID:           uuid.NewString(),
		Kind:         KindError,
		HeadingColor: ColorNegative,
		Lines:        append([]string(nil), lines...),
	}
}

const shellHTML = `<div class="popup" id="popup-{{.ID}}" style="position:fixed;top:50%;left:50%;transform:translate(-50%, -50%);background-color:#FD4;border:1px solid #ccc;padding:20px;box-shadow:0 4px 8px rgba(0, 0, 0, 0.2);z-index:1000;width:800px;">
  <div class="popup-card">
    <h2 style="color:{{.HeadingColor}};">{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</h2>
    <form method="post" action="/dismiss">
      <input type="hidden" name="overlay_id" value="{{.ID}}">
      <button class="close-popup" id="close-popup" type="submit">Close</button>
    </form>
  </div>
</div>`

var shell = template.Must(template.New("overlay").Parse(shellHTML))

// HTML renders the overlay shell with its dismiss control.
func (o Overlay) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := shell.Execute(&buf, o); err != nil {
		return "", fmt.Errorf("render overlay %s: %w", o.ID, err)
	}
	return template.HTML(buf.String()), nil
}
