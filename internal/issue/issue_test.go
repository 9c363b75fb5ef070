// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		RootNotFoundId,
		ManifestReadFailedId,
		ManifestParseFailedId,
		ReportWriteFailedId,
		ConfigLoadFailedId,
		InvalidFormatId,
	}
}

func TestId_Constants(t *testing.T) {
	t.Parallel()

	seen := make(map[Id]bool)
	for _, id := range allIds() {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}
	if RootNotFoundId != 1 {
		t.Errorf("RootNotFoundId = %d, want 1", RootNotFoundId)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	for _, id := range allIds() {
		issue := Get(id)
		if issue == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if issue.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, issue.Id())
		}
		if strings.TrimSpace(string(issue.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no markdown", id)
		}
	}

	if Get(Id(999)) != nil {
		t.Error("Get(999) should return nil")
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(allIds()) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(allIds()))
	}
	for i, id := range allIds() {
		if values[i].Id() != id {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, values[i].Id(), id)
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	t.Parallel()

	issue := Get(ManifestParseFailedId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ManifestParseFailedId should carry external links")
	}
	links[0] = "modified"
	if issue.ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
	if issue.DocLinks() != nil {
		t.Errorf("DocLinks() = %v, want nil", issue.DocLinks())
	}
}

// Tests that swap the package-level renderer must not run in parallel.
func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in, _ string) (string, error) {
		return in, nil
	}

	t.Run("with links", func(t *testing.T) {
		rendered, err := Get(ConfigLoadFailedId).Render("")
		if err != nil {
			t.Fatalf("Render() error: %v", err)
		}
		for _, want := range []string{"cargotally config path", "## See also", "- https://cuelang.org/docs/"} {
			if !strings.Contains(rendered, want) {
				t.Errorf("Render() missing %q:\n%s", want, rendered)
			}
		}
	})

	t.Run("without links", func(t *testing.T) {
		rendered, err := Get(RootNotFoundId).Render("")
		if err != nil {
			t.Fatalf("Render() error: %v", err)
		}
		if strings.Contains(rendered, "See also") {
			t.Errorf("Render() should not add a links section:\n%s", rendered)
		}
	})
}

func TestAllIssuesAreRenderable(t *testing.T) {
	t.Parallel()

	for _, issue := range Values() {
		out, err := issue.Render("notty")
		if err != nil {
			t.Errorf("issue %d Render() error: %v", issue.Id(), err)
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("issue %d rendered empty", issue.Id())
		}
	}
}
