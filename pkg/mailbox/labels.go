package mailbox

import (
	"context"
	"strings"
)

// FindLabelByName returns the label whose name equals name, ignoring case.
func FindLabelByName(labels []*Label, name string) *Label {
	for _, l := range labels {
		if l != nil && strings.EqualFold(l.Name, name) {
			return l
		}
	}
	return nil
}

// EnsureLabel looks up a label by name and creates it when missing.
func EnsureLabel(ctx context.Context, labels LabelManager, name string) (*Label, error) {
	existing, err := labels.ListLabels(ctx)
	if err != nil {
		return nil, err
	}
	if l := FindLabelByName(existing, name); l != nil {
		return l, nil
	}
	return labels.CreateLabel(ctx, &Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	})
}

// IsSystemLabel reports whether l is provider-defined rather than user-created.
func IsSystemLabel(l *Label) bool {
	return l != nil && l.Type == "system"
}
