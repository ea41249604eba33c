package cli

import "fmt"

// Build metadata for the pillar binary, set with -ldflags at release time. All
// of them are empty in a plain go build.
var (
	// BuildTag is the git tag of the release, empty when not built from a tag
	BuildTag string
	// BuildSHA is the git revision the binary was built from
	BuildSHA string
)

// versionString returns <git SHA>-<git tag>, with `dirty` in place of the tag
// when the build was not made from a tagged revision.
func versionString() string {
	tag := BuildTag
	if tag == `` {
		tag = `dirty`
	}
	return fmt.Sprintf(`%s-%s`, BuildSHA, tag)
}
