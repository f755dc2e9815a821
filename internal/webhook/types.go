package webhook

// Notification is the shape of a Meta webhook delivery, trimmed to the
// fields the relay reads.
type Notification struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []InboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// InboundMessage is one message inside a webhook delivery.
type InboundMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
}

// firstMessage digs out the first message of the delivery, if any. Meta
// batches at most one change per delivery in practice but the shape allows
// more; only the first is relayed, matching the retry-friendly always-200
// contract.
func (n Notification) firstMessage() (InboundMessage, bool) {
	for _, entry := range n.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) > 0 {
				return change.Value.Messages[0], true
			}
		}
	}
	return InboundMessage{}, false
}
