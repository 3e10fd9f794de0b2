// Package rpmtest builds small but well-formed RPM files for tests.
package rpmtest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

const (
	typeInt32       = 4
	typeString      = 6
	typeBin         = 7
	typeStringArray = 8
	typeI18NString  = 9

	headerMagic = 0x8eade801
)

// Header tags written by the builder
const (
	tagName           = 1000
	tagVersion        = 1001
	tagRelease        = 1002
	tagEpoch          = 1003
	tagSummary        = 1004
	tagDescription    = 1005
	tagBuildTime      = 1006
	tagBuildHost      = 1007
	tagVendor         = 1011
	tagLicense        = 1014
	tagGroup          = 1016
	tagURL            = 1020
	tagArch           = 1022
	tagOldFilenames   = 1027
	tagSourceRPM      = 1044
	tagProvideName    = 1047
	tagRequireFlags   = 1048
	tagRequireName    = 1049
	tagRequireVersion = 1050
	tagNoSource       = 1051
	tagSourcePackage  = 1106
	tagProvideFlags   = 1112
	tagProvideVersion = 1113

	sigTagPGP = 1002
)

// Dependency flag bits
const (
	SenseLess    = 0x02
	SenseGreater = 0x04
	SenseEqual   = 0x08
	SensePrereq  = 0x40
)

// Dep is a provides or requires entry
type Dep struct {
	Name    string
	Flags   uint32
	Version string
}

// Package describes the header of the RPM to build
type Package struct {
	Name    string
	Version string
	Release string
	Epoch   *uint32
	Arch    string

	Source   bool
	NoSource bool

	Vendor      string
	License     string
	BuildHost   string
	Description string
	Summary     string
	URL         string
	Group       string
	BuildTime   uint32

	Provides []Dep
	Requires []Dep
	Files    []string

	// Signature is placed in the signature header as a PGP signature blob
	Signature []byte

	// Payload is appended after the headers
	Payload []byte
}

// Epoch returns a pointer to e for use in Package literals
func Epoch(e uint32) *uint32 {
	return &e
}

type entry struct {
	tag   int32
	typ   int32
	count int32
	data  []byte
}

type headerWriter struct {
	entries []entry
}

func (w *headerWriter) str(tag int32, typ int32, s string) {
	w.entries = append(w.entries, entry{tag: tag, typ: typ, count: 1, data: append([]byte(s), 0)})
}

func (w *headerWriter) optStr(tag int32, s string) {
	if s != "" {
		w.str(tag, typeString, s)
	}
}

func (w *headerWriter) strs(tag int32, vals []string) {
	var buf bytes.Buffer
	for _, v := range vals {
		buf.WriteString(v)
		buf.WriteByte(0)
	}
	w.entries = append(w.entries, entry{tag: tag, typ: typeStringArray, count: int32(len(vals)), data: buf.Bytes()})
}

func (w *headerWriter) ints(tag int32, vals ...uint32) {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(buf[4*i:], v)
	}
	w.entries = append(w.entries, entry{tag: tag, typ: typeInt32, count: int32(len(vals)), data: buf})
}

func (w *headerWriter) bin(tag int32, data []byte) {
	w.entries = append(w.entries, entry{tag: tag, typ: typeBin, count: int32(len(data)), data: data})
}

func (w *headerWriter) deps(nameTag, flagsTag, versionTag int32, deps []Dep) {
	if len(deps) == 0 {
		return
	}
	names := make([]string, len(deps))
	flags := make([]uint32, len(deps))
	versions := make([]string, len(deps))
	for i, d := range deps {
		names[i], flags[i], versions[i] = d.Name, d.Flags, d.Version
	}
	w.strs(nameTag, names)
	w.ints(flagsTag, flags...)
	w.strs(versionTag, versions)
}

// bytes renders the header structure; the signature header is padded to
// an 8 byte boundary.
func (w *headerWriter) bytes(pad bool) []byte {
	sort.Slice(w.entries, func(i, j int) bool { return w.entries[i].tag < w.entries[j].tag })

	var store bytes.Buffer
	index := make([]byte, 0, 16*len(w.entries))
	for _, e := range w.entries {
		if e.typ == typeInt32 {
			for store.Len()%4 != 0 {
				store.WriteByte(0)
			}
		}
		var ix [16]byte
		binary.BigEndian.PutUint32(ix[0:], uint32(e.tag))
		binary.BigEndian.PutUint32(ix[4:], uint32(e.typ))
		binary.BigEndian.PutUint32(ix[8:], uint32(store.Len()))
		binary.BigEndian.PutUint32(ix[12:], uint32(e.count))
		index = append(index, ix[:]...)
		store.Write(e.data)
	}

	var out bytes.Buffer
	var intro [16]byte
	binary.BigEndian.PutUint32(intro[0:], headerMagic)
	binary.BigEndian.PutUint32(intro[8:], uint32(len(w.entries)))
	binary.BigEndian.PutUint32(intro[12:], uint32(store.Len()))
	out.Write(intro[:])
	out.Write(index)
	out.Write(store.Bytes())
	if pad {
		for out.Len()%8 != 0 {
			out.WriteByte(0)
		}
	}
	return out.Bytes()
}

func (p Package) lead() []byte {
	lead := make([]byte, 96)
	binary.BigEndian.PutUint32(lead[0:], 0xedabeedb)
	lead[4] = 3
	if p.Source {
		binary.BigEndian.PutUint16(lead[6:], 1)
	}
	binary.BigEndian.PutUint16(lead[8:], 1)
	copy(lead[10:75], p.Name+"-"+p.Version+"-"+p.Release)
	binary.BigEndian.PutUint16(lead[76:], 1)
	binary.BigEndian.PutUint16(lead[78:], 5)
	return lead
}

// Bytes renders the complete package
func (p Package) Bytes() []byte {
	var sig headerWriter
	if len(p.Signature) > 0 {
		sig.bin(sigTagPGP, p.Signature)
	}

	var gen headerWriter
	gen.str(tagName, typeString, p.Name)
	gen.str(tagVersion, typeString, p.Version)
	gen.str(tagRelease, typeString, p.Release)
	if p.Epoch != nil {
		gen.ints(tagEpoch, *p.Epoch)
	}
	if p.Summary != "" {
		gen.str(tagSummary, typeI18NString, p.Summary)
	}
	if p.Description != "" {
		gen.str(tagDescription, typeI18NString, p.Description)
	}
	if p.BuildTime != 0 {
		gen.ints(tagBuildTime, p.BuildTime)
	}
	gen.optStr(tagBuildHost, p.BuildHost)
	gen.optStr(tagVendor, p.Vendor)
	gen.optStr(tagLicense, p.License)
	if p.Group != "" {
		gen.str(tagGroup, typeI18NString, p.Group)
	}
	gen.optStr(tagURL, p.URL)
	gen.optStr(tagArch, p.Arch)
	if len(p.Files) > 0 {
		gen.strs(tagOldFilenames, p.Files)
	}
	if p.Source {
		gen.ints(tagSourcePackage, 1)
		if p.NoSource {
			gen.ints(tagNoSource, 0)
		}
	} else {
		gen.str(tagSourceRPM, typeString, p.Name+"-"+p.Version+"-"+p.Release+".src.rpm")
	}
	gen.deps(tagProvideName, tagProvideFlags, tagProvideVersion, p.Provides)
	gen.deps(tagRequireName, tagRequireFlags, tagRequireVersion, p.Requires)

	var out bytes.Buffer
	out.Write(p.lead())
	out.Write(sig.bytes(true))
	out.Write(gen.bytes(false))
	out.Write(p.Payload)
	return out.Bytes()
}

// WriteFile writes the package into dir under name and returns its path
func (p Package) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, p.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write test RPM: %v", err)
	}
	return path
}

// Walrus returns a typical binary package used across tests
func Walrus() Package {
	return Package{
		Name:        "walrus",
		Version:     "5.21",
		Release:     "1",
		Arch:        "noarch",
		Vendor:      "Pulp Team",
		License:     "GPLv2",
		BuildHost:   "smqe-ws15",
		Description: "A dummy package of walrus",
		Summary:     "A dummy package of walrus",
		URL:         "http://tstrachota.fedorapeople.org",
		Group:       "Internet/Applications",
		BuildTime:   1331831374,
		Provides: []Dep{
			{Name: "walrus", Flags: SenseEqual, Version: "5.21-1"},
		},
		Requires: []Dep{
			{Name: "whale", Flags: SenseGreater | SenseEqual, Version: "0.2"},
			{Name: "/bin/sh", Flags: SensePrereq},
			{Name: "rpmlib(PayloadFilesHavePrefix)", Flags: SenseLess | SenseEqual | 0x1000000, Version: "4.0-1"},
		},
		Files:   []string{"/usr/share/walrus/walrus.txt"},
		Payload: []byte("payload bytes of walrus"),
	}
}
