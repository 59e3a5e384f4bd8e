package models

// InboundMessage arrives from a transport on the bus's inbound channel.
type InboundMessage struct {
	Channel     string
	ChatID      string
	UserID      string
	Text        string
	Attachments []string
	System      bool // true for synthetic messages (heartbeat, cron)
}

// OutboundKind discriminates the OutboundMessage variants.
type OutboundKind string

const (
	OutboundReply    OutboundKind = "reply"
	OutboundTyping   OutboundKind = "typing"
	OutboundProgress OutboundKind = "progress"
)

// Button is an optional reply affordance a transport may render.
type Button struct {
	Label string
	Data  string
}

// OutboundMessage is one of {Reply(text + buttons), Typing, Progress(text)}
// published on the bus's outbound path for a given (channel, chat) pair.
type OutboundMessage struct {
	Kind     OutboundKind
	Channel  string
	ChatID   string
	Text     string
	Buttons  []Button
}
