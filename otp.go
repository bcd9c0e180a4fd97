package session

import "strings"

// DefaultOTPLength matches the six-digit codes the backend issues.
const DefaultOTPLength = 6

// OTPInput is the headless model of the split activation-code control: one
// single-digit cell per code position plus a focus index. The UI layer maps
// key and paste events onto the methods here; the model enforces that only
// digits land in cells and moves focus the way the rendered control does.
type OTPInput struct {
	cells []string
	focus int
}

// NewOTPInput returns a model with length cells, DefaultOTPLength when
// length is not positive.
func NewOTPInput(length int) *OTPInput {
	if length <= 0 {
		length = DefaultOTPLength
	}
	return &OTPInput{cells: make([]string, length)}
}

// Length returns the cell count.
func (o *OTPInput) Length() int {
	return len(o.cells)
}

// Focus returns the index of the focused cell.
func (o *OTPInput) Focus() int {
	return o.focus
}

// Value joins the filled cells into the entered code.
func (o *OTPInput) Value() string {
	return strings.Join(o.cells, "")
}

// Complete reports whether every cell holds a digit.
func (o *OTPInput) Complete() bool {
	for _, c := range o.cells {
		if c == "" {
			return false
		}
	}
	return true
}

// Input applies typed text to the cell at index. Non-digit input is ignored.
// The cell keeps only the last typed digit, and focus auto-advances to the
// next cell unless index is already the last one.
func (o *OTPInput) Input(index int, text string) {
	if !o.inRange(index) {
		return
	}
	if text == "" || !allDigits(text) {
		return
	}

	o.cells[index] = text[len(text)-1:]

	if index < len(o.cells)-1 {
		o.focus = index + 1
	} else {
		o.focus = index
	}
}

// Backspace clears the cell at index when it holds a digit; on an empty cell
// it moves focus back instead.
func (o *OTPInput) Backspace(index int) {
	if !o.inRange(index) {
		return
	}

	if o.cells[index] == "" {
		if index > 0 {
			o.focus = index - 1
		}
		return
	}

	o.cells[index] = ""
	o.focus = index
}

// ArrowLeft moves focus one cell left of index.
func (o *OTPInput) ArrowLeft(index int) {
	if o.inRange(index) && index > 0 {
		o.focus = index - 1
	}
}

// ArrowRight moves focus one cell right of index.
func (o *OTPInput) ArrowRight(index int) {
	if o.inRange(index) && index < len(o.cells)-1 {
		o.focus = index + 1
	}
}

// Paste distributes pasted text across the cells, left to right, up to the
// cell count. Text containing anything but digits is rejected outright and
// the entered value is left unchanged. Focus lands on the last filled cell,
// or the final cell when the paste fills all of them.
func (o *OTPInput) Paste(text string) {
	text = strings.TrimSpace(text)
	if len(text) > len(o.cells) {
		text = text[:len(o.cells)]
	}
	if text == "" || !allDigits(text) {
		return
	}

	for i := range o.cells {
		if i < len(text) {
			o.cells[i] = string(text[i])
		} else {
			o.cells[i] = ""
		}
	}

	o.focus = len(text) - 1
	if o.focus > len(o.cells)-1 {
		o.focus = len(o.cells) - 1
	}
}

// Clear empties every cell and resets focus.
func (o *OTPInput) Clear() {
	for i := range o.cells {
		o.cells[i] = ""
	}
	o.focus = 0
}

func (o *OTPInput) inRange(index int) bool {
	return index >= 0 && index < len(o.cells)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
