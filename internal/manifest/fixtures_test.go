package manifest

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zlib"
)

// Wire-level builders for test inputs. These mirror the serialized layout the
// decoders consume: little-endian integers, length-prefixed strings, and
// struct-of-arrays sections whose declared size counts from the section's
// first byte.

func putU8(b *bytes.Buffer, v uint8)   { b.WriteByte(v) }
func putU32(b *bytes.Buffer, v uint32) { binary.Write(b, binary.LittleEndian, v) }
func putU64(b *bytes.Buffer, v uint64) { binary.Write(b, binary.LittleEndian, v) }

func putBool(b *bytes.Buffer, v bool) {
	if v {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
}

func putString(b *bytes.Buffer, s string) {
	putU32(b, uint32(len(s)))
	b.WriteString(s)
}

func putStringArray(b *bytes.Buffer, ss []string) {
	putU32(b, uint32(len(ss)))
	for _, s := range ss {
		putString(b, s)
	}
}

// putGUID writes the 16-byte wire form of a canonical GUID string: four
// 32-bit words, each little-endian.
func putGUID(b *bytes.Buffer, guid string) {
	id := uuid.MustParse(guid)
	be := id[:]
	for i := 0; i < 4; i++ {
		binary.Write(b, binary.LittleEndian, binary.BigEndian.Uint32(be[i*4:]))
	}
}

// sizedSection prepends the 4-byte declared size to a section body. The size
// counts itself.
func sizedSection(body []byte) []byte {
	var b bytes.Buffer
	putU32(&b, uint32(len(body)+4))
	b.Write(body)
	return b.Bytes()
}

type metaSpec struct {
	dataVersion   uint8
	featureLevel  int32
	isFileData    bool
	appID         int32
	appName       string
	buildVersion  string
	launchExe     string
	launchCommand string
	prereqIDs     []string
	prereqName    string
	prereqPath    string
	prereqArgs    string
	buildID       string
}

func buildMeta(m metaSpec) []byte {
	var b bytes.Buffer
	putU8(&b, m.dataVersion)
	putU32(&b, uint32(m.featureLevel))
	putBool(&b, m.isFileData)
	putU32(&b, uint32(m.appID))
	putString(&b, m.appName)
	putString(&b, m.buildVersion)
	putString(&b, m.launchExe)
	putString(&b, m.launchCommand)
	putStringArray(&b, m.prereqIDs)
	putString(&b, m.prereqName)
	putString(&b, m.prereqPath)
	putString(&b, m.prereqArgs)
	if m.dataVersion >= 1 {
		putString(&b, m.buildID)
	}
	return sizedSection(b.Bytes())
}

type chunkSpec struct {
	guid       string
	hash       uint64
	sha        [20]byte
	group      uint8
	windowSize uint32
	fileSize   uint64
}

func buildChunkList(chunks []chunkSpec) []byte {
	var b bytes.Buffer
	putU8(&b, 0)
	putU32(&b, uint32(len(chunks)))
	for _, c := range chunks {
		putGUID(&b, c.guid)
	}
	for _, c := range chunks {
		putU64(&b, c.hash)
	}
	for _, c := range chunks {
		b.Write(c.sha[:])
	}
	for _, c := range chunks {
		putU8(&b, c.group)
	}
	for _, c := range chunks {
		putU32(&b, c.windowSize)
	}
	for _, c := range chunks {
		putU64(&b, c.fileSize)
	}
	return sizedSection(b.Bytes())
}

type partSpec struct {
	guid   string
	offset uint32
	size   uint32
}

type fileSpec struct {
	name    string
	symlink string
	sha     [20]byte
	flags   uint8
	tags    []string
	parts   []partSpec
	mime    string
}

func buildFileList(files []fileSpec) []byte {
	return buildFileListVersion(0, files)
}

// buildFileListVersion serializes the version 0 layout, plus the version 2
// tail: per-file hash arrays, MIME strings, and 32-byte trailers.
func buildFileListVersion(dataVersion uint8, files []fileSpec) []byte {
	var b bytes.Buffer
	putU8(&b, dataVersion)
	putU32(&b, uint32(len(files)))
	for _, f := range files {
		putString(&b, f.name)
	}
	for _, f := range files {
		putString(&b, f.symlink)
	}
	for _, f := range files {
		b.Write(f.sha[:])
	}
	for _, f := range files {
		putU8(&b, f.flags)
	}
	for _, f := range files {
		putStringArray(&b, f.tags)
	}
	for _, f := range files {
		putU32(&b, uint32(len(f.parts)))
		for _, p := range f.parts {
			putU32(&b, 28)
			putGUID(&b, p.guid)
			putU32(&b, p.offset)
			putU32(&b, p.size)
		}
	}
	if dataVersion >= 2 {
		for range files {
			putU32(&b, 2)
			b.Write(make([]byte, 2*16))
		}
		for _, f := range files {
			putString(&b, f.mime)
		}
		for range files {
			b.Write(make([]byte, 32))
		}
	}
	return sizedSection(b.Bytes())
}

// wrapContainer frames a payload in the binary container header. compress
// selects zlib storage; the header hash always covers the uncompressed
// payload.
func wrapContainer(payload []byte, compress bool) []byte {
	stored := payload
	var storedAs uint8
	if compress {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		zw.Write(payload)
		zw.Close()
		stored = z.Bytes()
		storedAs = StoredCompressed
	}
	sum := sha1.Sum(payload)

	var b bytes.Buffer
	putU32(&b, manifestMagic)
	putU32(&b, 41)
	putU32(&b, uint32(len(payload)))
	putU32(&b, uint32(len(stored)))
	b.Write(sum[:])
	putU8(&b, storedAs)
	putU32(&b, 18)
	b.Write(stored)
	return b.Bytes()
}

// wrapContainerExtended frames a payload with the 69-byte header form that
// carries the GUID, rolling hash, and hash type tail fields.
func wrapContainerExtended(payload []byte, guid string, rollingHash uint64, hashType uint32) []byte {
	sum := sha1.Sum(payload)

	var b bytes.Buffer
	putU32(&b, manifestMagic)
	putU32(&b, 69)
	putU32(&b, uint32(len(payload)))
	putU32(&b, uint32(len(payload)))
	b.Write(sum[:])
	putU8(&b, 0)
	putU32(&b, 18)
	putGUID(&b, guid)
	putU64(&b, rollingHash)
	putU32(&b, hashType)
	b.Write(payload)
	return b.Bytes()
}

// Recurring fixture GUIDs, already in canonical form.
const (
	guidAlpha = "11223344-5566-7788-99aa-bbccddeeff00"
	guidBeta  = "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"
)

func shaBytes(seed byte) [20]byte {
	var sha [20]byte
	for i := range sha {
		sha[i] = seed + byte(i)
	}
	return sha
}

// falconeerPayload builds a small but fully populated manifest payload for a
// known desktop build.
func falconeerPayload() []byte {
	meta := buildMeta(metaSpec{
		dataVersion:  0,
		featureLevel: 18,
		appID:        1,
		appName:      "32dbb6444ce14e9198129b746c0d056f",
		buildVersion: "1.4.30.0",
		launchExe:    "TheFalconeer.exe",
	})
	chunks := buildChunkList([]chunkSpec{
		{guid: guidAlpha, hash: 0x0123456789ABCDEF, sha: shaBytes(1), group: 3, windowSize: 1 << 20, fileSize: 987654},
		{guid: guidBeta, hash: 0xFEDCBA9876543210, sha: shaBytes(2), group: 3, windowSize: 1 << 20, fileSize: 456789},
	})
	files := buildFileList([]fileSpec{
		{
			name:  "MonoBleedingEdge/EmbedRuntime/mono-2.0-bdwgc.dll",
			sha:   shaBytes(3),
			flags: FileReadOnly,
			parts: []partSpec{
				{guid: guidAlpha, offset: 0, size: 100000000},
				{guid: guidBeta, offset: 128, size: 1003264},
			},
		},
		{
			name:  "TheFalconeer.exe",
			sha:   shaBytes(4),
			flags: FileUnixExecutable,
			tags:  []string{"client"},
			parts: []partSpec{
				{guid: guidAlpha, offset: 512, size: 650752},
			},
		},
	})

	var payload bytes.Buffer
	payload.Write(meta)
	payload.Write(chunks)
	payload.Write(files)
	return payload.Bytes()
}

func falconeerManifest(compress bool) []byte {
	return wrapContainer(falconeerPayload(), compress)
}
