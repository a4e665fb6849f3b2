package utils

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"runtime"
	"strings"
	"unicode"

	"github.com/abesuite/gaopool/chaincfg"

	"github.com/ethereum/go-ethereum/common"
)

func IsBlank(str string) bool {
	if str == "" {
		return true
	}

	for _, c := range str {
		if !unicode.IsSpace(c) {
			return false
		}
	}
	return true
}

// RandomUint64 returns a cryptographically random uint64 value.
func RandomUint64() (uint64, error) {
	var b [8]byte
	_, err := rand.Read(b[:])
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func GetNodeDesc() string {
	systemName := runtime.GOOS
	systemArch := runtime.GOARCH
	goVersion := runtime.Version()
	return "GaoPool-v" + chaincfg.PoolBackendVersion + "/" + systemName + "-" + systemArch + "/" + goVersion
}

// ParseAddress checks that addr is a 20 byte hex account address (with or
// without 0x prefix) and returns it.
func ParseAddress(addr string) (common.Address, error) {
	addr = strings.TrimSpace(addr)
	if IsBlank(addr) {
		return common.Address{}, errors.New("empty address")
	}
	if !common.IsHexAddress(addr) {
		return common.Address{}, errors.New("address is not a 20 byte hex string")
	}
	return common.HexToAddress(addr), nil
}

// ParseOptionalAddress is like ParseAddress but maps a blank string to the
// zero address.
func ParseOptionalAddress(addr string) (common.Address, error) {
	if IsBlank(addr) {
		return common.Address{}, nil
	}
	return ParseAddress(addr)
}
