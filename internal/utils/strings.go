package utils

import (
	"regexp"
)

// stageNameRegex restricts stage names to characters that are safe as
// storage key segments. A slash or a leading dot would corrupt the
// {projectId}/{stage}/... key layout.
var stageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// IsValidStageName checks whether a stage name can be used safely in
// storage keys and display output.
func IsValidStageName(name string) bool {
	if name == "" {
		return false
	}
	return stageNameRegex.MatchString(name)
}
