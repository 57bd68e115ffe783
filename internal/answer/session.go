// Package answer turns retrieved chunks and conversation history into a
// structured response with page citations.
package answer

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// Session holds the conversation history for one chat. A Session is not safe
// for concurrent use; callers that serve multiple conversations create one
// Session per conversation.
type Session struct {
	turns []Turn
}

// NewSession returns an empty conversation.
func NewSession() *Session {
	return &Session{}
}

// Turns returns the completed exchanges in order.
func (s *Session) Turns() []Turn {
	return s.turns
}

// Len returns the number of completed exchanges.
func (s *Session) Len() int {
	return len(s.turns)
}

func (s *Session) append(question, answer string) {
	s.turns = append(s.turns, Turn{Question: question, Answer: answer})
}
