package registry

import "strings"

// Owner tags which backend a device identifier belongs to. The tag is
// decided once at the registry boundary so downstream code branches on
// a type instead of re-parsing prefixes.
type Owner int

const (
	OwnerRemote Owner = iota
	OwnerMock
)

func (o Owner) String() string {
	if o == OwnerMock {
		return "mock"
	}
	return "remote"
}

// mockPrefixes are the ID namespaces owned by the mock store, checked
// in fixed precedence.
var mockPrefixes = []string{"mock_", "test_", "paired_"}

// ClassifyID resolves ownership for a device identifier. Any ID outside
// the mock namespaces belongs to the remote backend.
func ClassifyID(id string) Owner {
	for _, prefix := range mockPrefixes {
		if strings.HasPrefix(id, prefix) {
			return OwnerMock
		}
	}
	return OwnerRemote
}
