// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"testing"
)

func TestGroupValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		group   Group
		wantErr bool
	}{
		{name: "dependencies", group: GroupDependencies},
		{name: "dev-dependencies", group: GroupDevDependencies},
		{name: "build-dependencies", group: GroupBuildDependencies},
		{name: "empty", group: "", wantErr: true},
		{name: "target table", group: "target", wantErr: true},
		{name: "underscore spelling", group: "dev_dependencies", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.group.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Group(%q).Validate() error = %v, wantErr %v", tt.group, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGroup) {
				t.Errorf("Group(%q).Validate() error does not wrap ErrInvalidGroup", tt.group)
			}
		})
	}
}

func TestGroupsOrder(t *testing.T) {
	t.Parallel()

	got := Groups()
	want := []Group{GroupDependencies, GroupDevDependencies, GroupBuildDependencies}
	if len(got) != len(want) {
		t.Fatalf("Groups() returned %d groups, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Groups()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
