package commit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/commitpkg/internal/execshell"
)

const (
	gitDirFlagConstant                 = "--git-dir"
	gitDirectoryLookupTemplateConstant = "unable to locate git directory: %w"
	gitDirectoryEmptyMessageConstant   = "git reported an empty metadata directory"
)

// ErrGitDirectoryEmpty indicates git returned no metadata directory path.
var ErrGitDirectoryEmpty = errors.New(gitDirectoryEmptyMessageConstant)

// ResolveGitDirectory locates the repository metadata directory (usually
// .git) for the provided repository path, normalizing relative answers.
func ResolveGitDirectory(executionContext context.Context, executor GitExecutor, repositoryPath string) (string, error) {
	executionResult, lookupError := executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitDirFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if lookupError != nil {
		return "", fmt.Errorf(gitDirectoryLookupTemplateConstant, lookupError)
	}

	gitDirectory := strings.TrimSpace(executionResult.StandardOutput)
	if len(gitDirectory) == 0 {
		return "", ErrGitDirectoryEmpty
	}

	if !filepath.IsAbs(gitDirectory) {
		gitDirectory = filepath.Join(repositoryPath, gitDirectory)
	}
	return gitDirectory, nil
}
