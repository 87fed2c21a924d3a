package metric

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/go-logfmt/logfmt"
)

// Name identifies a reported value.  Labels narrow the name to one group or statistic and are marshalled with a
// modified logfmt, e.g. analysis[group=test stat=mean]
type Name struct {
	name   string
	labels map[string]string
}

// NewName returns a name with the given labels.  The label map is copied.
func NewName(name string, labels map[string]string) Name {
	return Name{name: name, labels: copyLabels(labels, len(labels))}
}

// With returns a copy of the name with labels upserted.  The receiver is not changed.
func (n Name) With(labels map[string]string) Name {
	out := Name{name: n.name, labels: copyLabels(n.labels, len(n.labels)+len(labels))}
	for k, v := range labels {
		out.labels[k] = v
	}
	return out
}

// Label returns the value of a label
func (n Name) Label(key string) (string, bool) {
	v, ok := n.labels[key]
	return v, ok
}

// String marshals the name, such as analysis[group=control stat=std]
func (n Name) String() string {
	labels, err := MarshalLabels(n.labels)
	if err != nil {
		labels = []byte{}
	}
	return n.name + string(labels)
}

// MarshalLabels encodes labels as k=v pairs in sorted key order between brackets.  No labels encode to the empty
// string.
func MarshalLabels(labels map[string]string) ([]byte, error) {
	if len(labels) == 0 {
		return []byte{}, nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b bytes.Buffer
	b.WriteByte('[')
	e := logfmt.NewEncoder(&b)
	for _, k := range keys {
		if err := e.EncodeKeyval(k, labels[k]); err != nil {
			return nil, fmt.Errorf("failed to encode %s=%s: %v", k, labels[k], err)
		}
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func copyLabels(labels map[string]string, size int) map[string]string {
	out := make(map[string]string, size)
	for k, v := range labels {
		out[k] = v
	}
	return out
}
