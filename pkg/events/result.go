package events

// Result is a constructed recognition result.
type Result struct {
	text  string
	final bool
}

func (r Result) Text() string  { return r.text }
func (r Result) IsFinal() bool { return r.final }

// ResultFactory turns decoded text into structured result objects.
// Construction beyond text carry-through belongs to the consumer side.
type ResultFactory interface {
	NewIntermediateResult(text string) Result
	NewFinalResult(text string) Result
}

// TextResultFactory is the default factory: verbatim text carry-through.
type TextResultFactory struct{}

func (TextResultFactory) NewIntermediateResult(text string) Result {
	return Result{text: text}
}

func (TextResultFactory) NewFinalResult(text string) Result {
	return Result{text: text, final: true}
}

var _ ResultFactory = TextResultFactory{}
