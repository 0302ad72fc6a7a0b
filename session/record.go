package session

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/nyxmesh/nyx-core/internal/bin"
)

const (
	recordMagic     = "NYXR"
	recordVersion   = 1
	recordHeaderLen = 4 + 1 + 1 + 8 + 4 // magic + version + flags + seq + cipherLen
)

// RecordFlag encodes the semantic type of a record frame.
type RecordFlag uint8

const (
	RecordFlagApp   RecordFlag = 0
	RecordFlagPing  RecordFlag = 1
	RecordFlagRekey RecordFlag = 2
)

var (
	ErrRecordTooLarge   = errors.New("session: record too large")
	ErrRecordDecrypt    = errors.New("session: record decrypt failed")
	ErrRecordBadMagic   = errors.New("session: record bad magic")
	ErrRecordBadVersion = errors.New("session: record bad version")
	ErrRecordBadFlag    = errors.New("session: record bad flag")
	ErrRecordShort      = errors.New("session: record too short")
)

// MaxPlaintextBytes returns the largest plaintext payload that fits within
// maxRecordBytes once framed.
func MaxPlaintextBytes(maxRecordBytes int) int {
	if maxRecordBytes <= 0 {
		return 0
	}
	return maxRecordBytes - recordHeaderLen - 16
}

func newAESGCM(key [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// encryptRecord seals plaintext into a framed, authenticated record. The
// 18-byte header is used as AEAD additional data; the nonce is the 4-byte
// direction prefix concatenated with the 8-byte big-endian sequence.
func encryptRecord(key [32]byte, noncePrefix [4]byte, flags RecordFlag, seq uint64, plaintext []byte, maxRecordBytes int) ([]byte, error) {
	if uint64(len(plaintext))+16 > 0xffffffff {
		return nil, ErrRecordTooLarge
	}
	if maxRecordBytes > 0 && recordHeaderLen+len(plaintext)+16 > maxRecordBytes {
		return nil, ErrRecordTooLarge
	}
	aead, err := newAESGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, 12)
	copy(nonce[:4], noncePrefix[:])
	bin.PutU64BE(nonce[4:12], seq)

	header := make([]byte, recordHeaderLen)
	copy(header[:4], []byte(recordMagic))
	header[4] = recordVersion
	header[5] = byte(flags)
	bin.PutU64BE(header[6:14], seq)
	cipherLen := len(plaintext) + 16
	bin.PutU32BE(header[14:18], uint32(cipherLen))

	ciphertext := aead.Seal(nil, nonce, plaintext, header)
	return append(header, ciphertext...), nil
}

// decryptRecord validates and opens a framed record.
func decryptRecord(key [32]byte, noncePrefix [4]byte, frame []byte, maxRecordBytes int) (flags RecordFlag, seq uint64, plaintext []byte, err error) {
	if maxRecordBytes > 0 && len(frame) > maxRecordBytes {
		return 0, 0, nil, ErrRecordTooLarge
	}
	if len(frame) < recordHeaderLen {
		return 0, 0, nil, ErrRecordShort
	}
	if string(frame[:4]) != recordMagic {
		return 0, 0, nil, ErrRecordBadMagic
	}
	if frame[4] != recordVersion {
		return 0, 0, nil, ErrRecordBadVersion
	}
	flags = RecordFlag(frame[5])
	switch flags {
	case RecordFlagApp, RecordFlagPing, RecordFlagRekey:
	default:
		return 0, 0, nil, ErrRecordBadFlag
	}
	seq = bin.U64BE(frame[6:14])
	n := int(bin.U32BE(frame[14:18]))
	if n < 0 || recordHeaderLen+n != len(frame) {
		return 0, 0, nil, ErrRecordShort
	}

	aead, err := newAESGCM(key)
	if err != nil {
		return 0, 0, nil, err
	}
	nonce := make([]byte, 12)
	copy(nonce[:4], noncePrefix[:])
	bin.PutU64BE(nonce[4:12], seq)

	plain, err := aead.Open(nil, nonce, frame[recordHeaderLen:], frame[:recordHeaderLen])
	if err != nil {
		return 0, 0, nil, ErrRecordDecrypt
	}
	return flags, seq, plain, nil
}
