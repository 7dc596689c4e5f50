// Example program demonstrating the gitversioner library API.
//
// Run from the repo root:
//
//	go run ./example/
//
// With remote mode (set GITHUB_TOKEN first):
//
//	GITHUB_TOKEN=ghp_xxx go run ./example/
package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversioner/pkg/gitversioner"
)

func main() {
	localVersion()
	customVersion()

	if os.Getenv("GITHUB_TOKEN") != "" {
		remoteVersion()
	}
}

func localVersion() {
	result, err := gitversioner.Calculate(gitversioner.LocalOptions{
		Path: ".",
	})
	if err != nil {
		log.Fatalf("local calculation failed: %v", err)
	}

	printVersion("Local", result)
}

// customVersion renders names like "1.2.1234-login" with the branch name
// in upper case.
func customVersion() {
	result, err := gitversioner.Calculate(gitversioner.LocalOptions{
		Path: ".",
		Formatter: func(s gitversioner.State) (string, error) {
			name := fmt.Sprintf("1.2.%d", s.VersionCode)
			if short := s.ShortName(); short != "" {
				name += "-" + short
			}
			return name, nil
		},
		ShortNameFormatter: func(s gitversioner.State) (string, error) {
			return strings.ToUpper(s.BranchName), nil
		},
	})
	if err != nil {
		log.Fatalf("custom calculation failed: %v", err)
	}

	fmt.Printf("=== Custom Version ===\n%s\n\n", result.VersionName)
}

func remoteVersion() {
	result, err := gitversioner.CalculateRemote(gitversioner.RemoteOptions{
		Owner: "MyCarrier-DevOps",
		Repo:  "go-gitversioner",
		Token: os.Getenv("GITHUB_TOKEN"),
		Ref:   "main",
	})
	if err != nil {
		log.Fatalf("remote calculation failed: %v", err)
	}

	printVersion("Remote", result)
}

func printVersion(label string, result *gitversioner.Result) {
	fmt.Printf("=== %s Version ===\n", label)

	keys := make([]string, 0, len(result.Variables))
	for k := range result.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%-30s %s\n", k, result.Variables[k])
	}
	fmt.Println()
}
