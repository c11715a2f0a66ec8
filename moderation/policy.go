package moderation

import (
	"fmt"
	"io/fs"
)

// Verdict is the outcome of inspecting one message content.
type Verdict struct {
	// Blocked is set when the content holds a forbidden word; it must not be broadcast.
	Blocked     bool
	BlockedWord string
	Segmented   bool
	TriggerWord string
}

// Policy applies the content filters to chat messages: a blocklist rejecting
// the message and a list of trigger words selecting segmented delivery.
type Policy struct {
	blocklist Moderator
	triggers  Moderator
}

func NewPolicy(blockedWords, triggerWords []string) (Policy, error) {
	blocklist, err := NewModerator(blockedWords)
	if err != nil {
		return Policy{}, fmt.Errorf("blocklist: %w", err)
	}
	triggers, err := NewModerator(triggerWords)
	if err != nil {
		return Policy{}, fmt.Errorf("segmentation triggers: %w", err)
	}
	return Policy{blocklist: blocklist, triggers: triggers}, nil
}

// NewPolicyFromFS builds the policy from the blocked.txt and segment.txt
// lists of fsys. Overrides replace a file when not empty.
func NewPolicyFromFS(fsys fs.FS, blockedOverride, triggerOverride []string) (Policy, WordLists, error) {
	lists, err := NewWordLoader(fsys).LoadAll()
	if err != nil {
		return Policy{}, WordLists{}, err
	}
	if len(blockedOverride) > 0 {
		lists.Blocked = blockedOverride
	}
	if len(triggerOverride) > 0 {
		lists.Triggers = triggerOverride
	}
	policy, err := NewPolicy(lists.Blocked, lists.Triggers)
	return policy, lists, err
}

// Inspect runs the blocklist first: a blocked message is never inspected for
// segmentation triggers.
func (p Policy) Inspect(content string) Verdict {
	if word, ok := p.blocklist.Find(content); ok {
		return Verdict{Blocked: true, BlockedWord: word}
	}
	if word, ok := p.triggers.Find(content); ok {
		return Verdict{Segmented: true, TriggerWord: word}
	}
	return Verdict{}
}
