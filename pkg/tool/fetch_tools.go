package tool

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"
)

type toolSpec struct {
	URL      string
	Dest     string
	Sha256   string
	Strip    int
	MarkExec []string `yaml:"markExec,omitempty"`
}

type toolConfig struct {
	Vars  map[string]string
	Tools map[string]toolSpec
}

var fetchToolsCmd = &cobra.Command{
	Use:   "fetch-tools",
	Short: "Downloads the external CLIs the targets rely on",
	Long: `Downloads the external CLI tools listed in TOOLS.yml (migration tool,
linter) into the workspace .tools directory. Already downloaded tools are
skipped based on the recorded stamps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		printTask("Loading config")
		root, err := findProjectRoot()
		if err != nil {
			return err
		}

		cfg, stamps, err := loadToolConfig(root)
		if err != nil {
			return err
		}

		printTask("Downloading tools")
		err = downloadTools(cfg, stamps, root)

		stampPath := filepath.Join(root, ".tools", "TOOLS.stamps")
		stampData, jErr := json.Marshal(stamps)
		if jErr == nil {
			jErr = os.WriteFile(stampPath, stampData, os.FileMode(0660))
		}
		if jErr != nil {
			printError(jErr.Error())
		}

		printTask("Done")
		return err
	},
}

func printTask(msg string) {
	colorstring.Printf("[blue][bold]==>[default] %s\n", msg)
}

func printSubtask(msg string) {
	colorstring.Printf("[green][bold]  ->[reset] %s\n", msg)
}

func printError(msg string) {
	colorstring.Printf("[red][bold]  ->[reset] %s\n", msg)
}

// findProjectRoot walks up from the working directory until it finds the
// go.mod that marks the workspace root.
func findProjectRoot() (string, error) {
	path, err := os.Getwd()
	if err != nil {
		return "", eris.Wrap(err, "Failed to retrieve the current working directory")
	}

	for {
		_, err := os.Stat(filepath.Join(path, "go.mod"))
		if err == nil {
			return path, nil
		}

		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrap(err, "Error occurred while searching for the project root")
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", eris.New("Project root not found")
		}
		path = parent
	}
}

func loadToolConfig(projectRoot string) (toolConfig, map[string]string, error) {
	var cfg toolConfig
	cfgPath := filepath.Join(projectRoot, "TOOLS.yml")
	cfgData, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfg, nil, eris.Wrapf(err, "Could not open file %s", cfgPath)
	}

	err = yaml.Unmarshal(cfgData, &cfg)
	if err != nil {
		return cfg, nil, eris.Wrapf(err, "Failed to parse %s", cfgPath)
	}

	stamps := map[string]string{}
	stampPath := filepath.Join(projectRoot, ".tools", "TOOLS.stamps")
	stampData, err := os.ReadFile(stampPath)
	if err != nil {
		if !eris.Is(err, os.ErrNotExist) {
			return cfg, nil, eris.Wrapf(err, "Failed to read stamps file %s", stampPath)
		}
	} else {
		err = json.Unmarshal(stampData, &stamps)
		if err != nil {
			return cfg, nil, eris.Wrapf(err, "Failed to parse JSON file %s", stampPath)
		}
	}

	return cfg, stamps, nil
}

var toolVarMatcher = regexp.MustCompile(`\{([A-Z0-9_]+)\}`)

func expandToolVars(url string, vars map[string]string) string {
	return toolVarMatcher.ReplaceAllStringFunc(url, func(varName string) string {
		value, ok := vars[varName[1:len(varName)-1]]
		if ok {
			return value
		}
		return ""
	})
}

func getProgressBar(length int64, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.DefaultBytes(length, desc)
}

func downloadTools(cfg toolConfig, stamps map[string]string, projectRoot string) error {
	client := &http.Client{
		Timeout: time.Minute * 30,
	}
	buf := make([]byte, 4096)

	vars := cfg.Vars
	if vars == nil {
		vars = map[string]string{}
	}
	vars["GOOS"] = runtime.GOOS
	vars["GOARCH"] = runtime.GOARCH

	err := os.MkdirAll(filepath.Join(projectRoot, ".tools"), os.FileMode(0770))
	if err != nil {
		return eris.Wrap(err, "Failed to create the .tools directory")
	}

	for name, meta := range cfg.Tools {
		meta.URL = expandToolVars(meta.URL, vars)

		destPath := filepath.Join(projectRoot, meta.Dest)
		_, err := os.Stat(destPath)
		destExists := err == nil

		stampToken := meta.URL + "#" + meta.Sha256
		stamp, ok := stamps[name]
		if ok && stampToken == stamp && destExists {
			continue
		}

		printSubtask(name + ":  " + meta.URL)
		if meta.Sha256 == "" {
			return eris.Errorf("Tool %s doesn't have a checksum", name)
		}

		arHandle, err := os.CreateTemp("", "tools_dl")
		if err != nil {
			return eris.Wrap(err, "Failed to create download file")
		}
		defer func() {
			arHandle.Close()
			os.Remove(arHandle.Name())
		}()

		resp, err := client.Get(meta.URL)
		if err != nil {
			return eris.Wrapf(err, "Failed to start download for %s", meta.URL)
		}
		defer resp.Body.Close()

		hash := sha256.New()
		bar := getProgressBar(resp.ContentLength, "     download")
		for {
			n, err := resp.Body.Read(buf)
			if err != nil && n < 1 {
				if err == io.EOF {
					break
				}
				return eris.Wrapf(err, "Failed during download of %s", meta.URL)
			}

			_, err = hash.Write(buf[:n])
			if err != nil {
				return eris.Wrapf(err, "Failed to calculate checksum for %s", meta.URL)
			}

			_, err = arHandle.Write(buf[:n])
			if err != nil {
				return eris.Wrap(err, "Failed to write download to file")
			}

			bar.Write(buf[:n])
		}
		bar.Finish()
		resp.Body.Close()

		digest := hex.EncodeToString(hash.Sum(nil))
		if digest != meta.Sha256 {
			return eris.Errorf("Checksum check failed for %s", name)
		}

		_, err = arHandle.Seek(0, io.SeekStart)
		if err != nil {
			return eris.Wrap(err, "Failed to rewind download file")
		}

		err = extractTool(arHandle, projectRoot, meta)
		if err != nil {
			return err
		}

		if runtime.GOOS != "windows" {
			// .zip files don't carry permissions which means we have to
			// manually fix permissions for binaries in .zip files
			for _, binPath := range meta.MarkExec {
				binPath = filepath.Join(projectRoot, meta.Dest, binPath)
				fi, err := os.Stat(binPath)
				if err != nil {
					return eris.Wrapf(err, "Failed to read permissions for %s", binPath)
				}

				err = os.Chmod(binPath, fi.Mode()|0700)
				if err != nil {
					return eris.Wrapf(err, "Failed to mark %s as executable", binPath)
				}
			}
		}

		stamps[name] = stampToken
	}

	return nil
}

func extractTool(archive *os.File, projectRoot string, meta toolSpec) error {
	switch {
	case strings.HasSuffix(meta.URL, ".zip"):
		return extractZip(archive, projectRoot, meta)
	case strings.HasSuffix(meta.URL, ".tar.gz"):
		reader, err := gzip.NewReader(archive)
		if err != nil {
			return eris.Wrap(err, "Failed to open gzip archive")
		}
		return extractTar(reader, projectRoot, meta)
	case strings.HasSuffix(meta.URL, ".tar.xz"):
		reader, err := xz.NewReader(archive)
		if err != nil {
			return eris.Wrap(err, "Failed to open xz archive")
		}
		return extractTar(reader, projectRoot, meta)
	default:
		return eris.Errorf("Unsupported archive type for %s", meta.URL)
	}
}

func openExtractDest(projectRoot, item string, meta toolSpec) (*os.File, error) {
	// normalize the path and strip meta.Strip elements from the beginning
	pathParts := strings.Split(filepath.Clean(item), string(filepath.Separator))
	if len(pathParts) <= meta.Strip {
		return nil, nil
	}

	destPath := filepath.Join(projectRoot, meta.Dest)
	dest := filepath.Join(destPath, strings.Join(pathParts[meta.Strip:], string(filepath.Separator)))
	if dest == destPath {
		return nil, nil
	}

	destParent := filepath.Dir(dest)
	err := os.MkdirAll(destParent, os.FileMode(0770))
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to create directory %s", destParent)
	}

	handle, err := os.Create(dest)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to create file %s", dest)
	}

	return handle, nil
}

func extractTar(reader io.Reader, projectRoot string, meta toolSpec) error {
	archive := tar.NewReader(reader)
	for {
		header, err := archive.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "Failed to read tar archive")
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		handle, err := openExtractDest(projectRoot, header.Name, meta)
		if err != nil {
			return err
		}
		if handle == nil {
			continue
		}

		_, err = io.Copy(handle, archive)
		handle.Close()
		if err != nil {
			return eris.Wrapf(err, "Failed to extract %s", header.Name)
		}

		err = os.Chmod(handle.Name(), os.FileMode(header.Mode))
		if err != nil {
			return eris.Wrapf(err, "Failed to set permissions on %s", handle.Name())
		}
	}
}

func extractZip(archive *os.File, projectRoot string, meta toolSpec) error {
	info, err := archive.Stat()
	if err != nil {
		return eris.Wrap(err, "Failed to stat archive")
	}

	reader, err := zip.NewReader(archive, info.Size())
	if err != nil {
		return eris.Wrap(err, "Failed to open zip archive")
	}

	for _, item := range reader.File {
		if item.FileInfo().IsDir() {
			continue
		}

		handle, err := openExtractDest(projectRoot, item.Name, meta)
		if err != nil {
			return err
		}
		if handle == nil {
			continue
		}

		itemReader, err := item.Open()
		if err != nil {
			handle.Close()
			return eris.Wrapf(err, "Failed to open %s in archive", item.Name)
		}

		_, err = io.Copy(handle, itemReader)
		itemReader.Close()
		handle.Close()
		if err != nil {
			return eris.Wrapf(err, "Failed to extract %s", item.Name)
		}
	}

	return nil
}
