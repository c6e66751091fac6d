package loader

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"manifesto/internal/manifest"
)

const jsonDoc = `{
	"ManifestFileVersion": "18",
	"AppNameString": "sampleapp",
	"BuildVersionString": "1.0.0",
	"LaunchExeString": "sample.exe",
	"FileManifestList": [
		{
			"Filename": "sample.exe",
			"FileHash": "",
			"FileChunkParts": [
				{"Guid": "11223344-5566-7788-99aa-bbccddeeff00", "Offset": "0", "Size": "400"}
			]
		}
	]
}`

func writeFixture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// binaryFixture frames an empty payload in a binary container header, with
// the hash either matching or deliberately wrong.
func binaryFixture(corrupt bool) []byte {
	payload := []byte{0, 0, 0, 0}
	sum := sha1.Sum(payload)
	if corrupt {
		sum[0] ^= 0xFF
	}
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, uint32(0x44BEC00C))
	binary.Write(&b, binary.LittleEndian, uint32(41))
	binary.Write(&b, binary.LittleEndian, uint32(len(payload)))
	binary.Write(&b, binary.LittleEndian, uint32(len(payload)))
	b.Write(sum[:])
	b.WriteByte(0)
	binary.Write(&b, binary.LittleEndian, uint32(18))
	b.Write(payload)
	return b.Bytes()
}

func TestLoadMatchesParse(t *testing.T) {
	data := []byte(jsonDoc)
	path := writeFixture(t, data)

	fromFile, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fromBytes, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(fromFile, fromBytes) {
		t.Fatalf("Load and Parse disagree:\nfile:  %+v\nbytes: %+v", fromFile, fromBytes)
	}
	if fromFile.Meta.AppName != "sampleapp" {
		t.Fatalf("appName = %q", fromFile.Meta.AppName)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.manifest"))
	if err == nil {
		t.Fatal("Load of missing file succeeded")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want wrapped fs.ErrNotExist", err)
	}
}

func TestLoadAsyncMatchesLoad(t *testing.T) {
	path := writeFixture(t, []byte(jsonDoc))

	sync, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fut := LoadAsync(path)

	select {
	case <-fut.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future never completed")
	}
	async, err := fut.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !reflect.DeepEqual(sync, async) {
		t.Fatalf("async result differs:\nsync:  %+v\nasync: %+v", sync, async)
	}
	// Wait is repeatable.
	again, err := fut.Wait()
	if err != nil || again != async {
		t.Fatalf("second Wait = %v, %v", again, err)
	}
}

func TestLoadAsyncPropagatesError(t *testing.T) {
	fut := LoadAsync(filepath.Join(t.TempDir(), "absent.manifest"))
	m, err := fut.Wait()
	if err == nil || m != nil {
		t.Fatalf("Wait = %v, %v, want error", m, err)
	}
}

func TestLoadWithOptionsStrictIntegrity(t *testing.T) {
	path := writeFixture(t, binaryFixture(true))

	if _, err := LoadWithOptions(path, manifest.Options{StrictIntegrity: true}); !errors.Is(err, manifest.ErrIntegrity) {
		t.Fatalf("strict err = %v, want ErrIntegrity", err)
	}
	m, err := LoadWithOptions(path, manifest.Options{})
	if err != nil {
		t.Fatalf("tolerant load: %v", err)
	}
	if !m.Advisories.IntegrityMismatch {
		t.Fatal("missing integrity advisory")
	}

	clean := writeFixture(t, binaryFixture(false))
	if _, err := LoadWithOptions(clean, manifest.Options{StrictIntegrity: true}); err != nil {
		t.Fatalf("clean strict load: %v", err)
	}
}
