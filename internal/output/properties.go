package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/magiconair/properties"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/versioner"
)

// PropertiesHeader is the comment written at the top of properties files.
const PropertiesHeader = "gitversioner - extracted data from git repository"

// propertyKeys maps properties file keys to variable names, in file order.
var propertyKeys = []struct{ key, variable string }{
	{"versionCode", VarVersionCode},
	{"versionName", VarVersionName},
	{"baseBranch", VarBaseBranch},
	{"branchName", VarBranchName},
	{"currentSha1", VarCurrentSha1},
	{"baseBranchCommitCount", VarBaseBranchCommitCount},
	{"featureBranchCommitCount", VarFeatureBranchCommitCount},
	{"timeComponent", VarTimeComponent},
	{"yearFactor", VarYearFactor},
	{"localChanges", VarLocalChanges},
}

// newProperties converts the variables to properties keyed by their file
// names. Unset variables are skipped.
func newProperties(variables map[string]string) (*properties.Properties, error) {
	p := properties.NewProperties()
	// Branch names may contain "${", which must not be expanded.
	p.DisableExpansion = true
	p.WriteSeparator = "="
	for _, k := range propertyKeys {
		value, ok := variables[k.variable]
		if !ok {
			continue
		}
		if _, _, err := p.Set(k.key, value); err != nil {
			return nil, fmt.Errorf("setting property %s: %w", k.key, err)
		}
	}
	return p, nil
}

// WriteProperties writes the variables as a java properties file. Unset
// variables are skipped.
func WriteProperties(w io.Writer, variables map[string]string) error {
	p, err := newProperties(variables)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "#%s\n", PropertiesHeader); err != nil {
		return fmt.Errorf("writing properties header: %w", err)
	}
	if _, err := p.Write(w, properties.UTF8); err != nil {
		return fmt.Errorf("writing properties: %w", err)
	}
	return nil
}

// WritePropertiesFile writes the properties of v to path, creating parent
// directories as needed.
func WritePropertiesFile(path string, v *versioner.Versioner) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteProperties(f, GetVariables(v)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
