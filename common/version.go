package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

// Version of all Ethersphere contracts encoded as major*1e6 + minor*1e3 + patch.
const Version = 0*1_000_000 + 1*1_000 + 0

// PrevVersion is the oldest deployed version the current contracts can be
// updated from. Nothing older than the first release exists yet.
const PrevVersion = Version

// Panic messages of CheckVersion.
const (
	ErrVersionMismatch = "previous version mismatch"
	ErrAlreadyUpdated  = "contract is already of the latest version"
)

// CheckVersion panics unless the contract of version from may be updated to
// Version.
func CheckVersion(from int) {
	switch {
	case from < PrevVersion:
		panic(ErrVersionMismatch + ": expected >=" + std.Itoa(PrevVersion, 10))
	case from == Version:
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
}

// AppendVersion adds the running version to the update data, _deploy reads it
// as the last argument.
func AppendVersion(data any) []any {
	if data == nil {
		return []any{Version}
	}
	return append(data.([]any), Version)
}
