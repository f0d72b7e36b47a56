package launchd

import (
	"bytes"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"howett.net/plist"
)

// Descriptor is the typed view of a launchd job plist. Only the keys macsvc
// reads or writes are mapped; the raw dictionary keeps the rest.
type Descriptor struct {
	Label                string            `plist:"Label"`
	Program              string            `plist:"Program,omitempty"`
	ProgramArguments     []string          `plist:"ProgramArguments,omitempty"`
	KeepAlive            interface{}       `plist:"KeepAlive,omitempty"`
	RunAtLoad            bool              `plist:"RunAtLoad,omitempty"`
	Disabled             bool              `plist:"Disabled,omitempty"`
	UserName             string            `plist:"UserName,omitempty"`
	WorkingDirectory     string            `plist:"WorkingDirectory,omitempty"`
	StandardOutPath      string            `plist:"StandardOutPath,omitempty"`
	StandardErrorPath    string            `plist:"StandardErrorPath,omitempty"`
	EnvironmentVariables map[string]string `plist:"EnvironmentVariables,omitempty"`
	StartInterval        int               `plist:"StartInterval,omitempty"`
}

// DecodeDescriptor parses XML, binary or OpenStep plist data into both the
// typed descriptor and the raw dictionary.
func DecodeDescriptor(data []byte) (*Descriptor, map[string]interface{}, error) {
	raw := map[string]interface{}{}
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, nil, cerr.Wrap(err, "decoding plist")
	}

	d := &Descriptor{}
	if _, err := plist.Unmarshal(data, d); err != nil {
		return nil, nil, cerr.Wrap(err, "decoding launchd descriptor")
	}
	return d, raw, nil
}

// ReadDescriptor loads a descriptor file from disk.
func ReadDescriptor(path string) (*Descriptor, map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, cerr.Wrapf(err, "reading %s", path)
	}
	d, raw, err := DecodeDescriptor(data)
	if err != nil {
		return nil, nil, cerr.Wrapf(err, "parsing %s", path)
	}
	return d, raw, nil
}

// EncodeDescriptor renders d as an XML plist.
func EncodeDescriptor(d *Descriptor) ([]byte, error) {
	if d == nil || d.Label == "" {
		return nil, cerr.New("descriptor requires a Label")
	}
	var buf bytes.Buffer
	enc := plist.NewEncoderForFormat(&buf, plist.XMLFormat)
	enc.Indent("\t")
	if err := enc.Encode(d); err != nil {
		return nil, cerr.Wrap(err, "encoding launchd descriptor")
	}
	return buf.Bytes(), nil
}

// WriteDescriptor writes d to path as an XML plist with mode 0644. The file
// is replaced atomically so launchd never sees a partial descriptor.
func WriteDescriptor(path string, d *Descriptor) error {
	data, err := EncodeDescriptor(d)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return cerr.Wrapf(err, "creating temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return cerr.Wrapf(err, "writing %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return cerr.Wrapf(err, "closing %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return cerr.Wrapf(err, "setting permissions on %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return cerr.Wrapf(err, "installing %s", path)
	}
	return nil
}

// alwaysRunning reports whether launchd keeps the job alive unconditionally
// given its KeepAlive setting. exists is consulted for PathState conditions.
func alwaysRunning(keepAlive interface{}, exists func(string) bool) bool {
	switch ka := keepAlive.(type) {
	case bool:
		return ka
	case map[string]interface{}:
		states, ok := ka["PathState"].(map[string]interface{})
		if !ok {
			return false
		}
		for path, want := range states {
			b, ok := want.(bool)
			if !ok {
				continue
			}
			if b && exists(path) {
				return true
			}
			if !b && !exists(path) {
				return true
			}
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
