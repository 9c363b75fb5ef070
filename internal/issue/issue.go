// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	RootNotFoundId Id = iota + 1
	ManifestReadFailedId
	ManifestParseFailedId
	ReportWriteFailedId
	ConfigLoadFailedId
	InvalidFormatId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render formats the issue for the terminal. stylePath is a glamour style
// name ("dark", "light", "notty") or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- " + string(link) + "\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- " + string(link) + "\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	rootNotFoundIssue = &Issue{
		id: RootNotFoundId,
		mdMsg: `
# Scan root is not a readable directory!

The directory to scan does not exist, is a regular file, or cannot be listed.

## Things you can try:
- Check the path given to ` + "`--root`" + ` or the ` + "`root`" + ` config key
- Run from the workspace directory so the default ` + "`.`" + ` points at it
- Make sure your user can list the directory:
~~~
$ ls -ld <root>
~~~`,
	}

	manifestReadFailedIssue = &Issue{
		id: ManifestReadFailedId,
		mdMsg: `
# A manifest could not be read!

A ` + "`Cargo.toml`" + ` was found but reading it failed, usually because of
permissions or a dangling symlink.

## Things you can try:
- Fix the file permissions and run again
- Skip the directory holding it with ` + "`--exclude <name>`",
	}

	manifestParseFailedIssue = &Issue{
		id: ManifestParseFailedId,
		mdMsg: `
# A manifest is not valid TOML!

Every manifest under the scan root must parse, otherwise the counts would be
incomplete and the run stops.

## Things you can try:
- Fix the syntax error at the reported line and column
- Skip the directory holding it with ` + "`--exclude <name>`" + `
- Run with ` + "`--lenient`" + ` to leave unparseable manifests out of the report`,
		extLinks: []HttpLink{"https://toml.io/en/v1.0.0", "https://doc.rust-lang.org/cargo/reference/manifest.html"},
	}

	reportWriteFailedIssue = &Issue{
		id: ReportWriteFailedId,
		mdMsg: `
# The report could not be written!

Nothing was written, the previous report (if any) is left as it was.

## Things you can try:
- Check that the directory of ` + "`--output`" + ` exists and is writable
- For ` + "`s3+http(s)://`" + ` outputs, check the endpoint, the bucket and the
  ` + "`AWS_ACCESS_KEY_ID`" + ` / ` + "`AWS_SECRET_ACCESS_KEY`" + ` variables`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration!

The configuration file exists but could not be read or does not match the
schema.

## Things you can try:
- Print the file being used:
~~~
$ cargotally config path
~~~
- Print the effective configuration with defaults applied:
~~~
$ cargotally config show
~~~
- Write a fresh file with every default value:
~~~
$ cargotally config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	invalidFormatIssue = &Issue{
		id: InvalidFormatId,
		mdMsg: `
# Unknown report format!

## Supported formats:
- ` + "`csv`" + ` (default): ` + "`group,name,count`" + ` rows
- ` + "`json`" + `: an array of ` + "`{group, name, count}`" + ` objects
- ` + "`yaml`" + `: the same entries as a YAML sequence`,
	}

	issues = map[Id]*Issue{
		rootNotFoundIssue.Id():        rootNotFoundIssue,
		manifestReadFailedIssue.Id():  manifestReadFailedIssue,
		manifestParseFailedIssue.Id(): manifestParseFailedIssue,
		reportWriteFailedIssue.Id():   reportWriteFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		invalidFormatIssue.Id():       invalidFormatIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
