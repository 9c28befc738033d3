package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// codecVersion первый байт записи. Меняется при несовместимой смене формата.
const codecVersion byte = 1

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	// EncodeAll и DecodeAll безопасны для конкурентного вызова
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(fmt.Sprintf("zstd encoder: %v", err))
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("zstd decoder: %v", err))
	}
}

// Encode упаковывает запись: версия + zstd(msgpack)
func Encode(rec Record) ([]byte, error) {
	raw, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации сохранения: %w", err)
	}
	out := make([]byte, 1, len(raw)/2+1)
	out[0] = codecVersion
	return encoder.EncodeAll(raw, out), nil
}

// Decode обратное к Encode
func Decode(data []byte) (Record, error) {
	var rec Record
	if len(data) == 0 {
		return rec, fmt.Errorf("пустая запись")
	}
	if data[0] != codecVersion {
		return rec, fmt.Errorf("неподдерживаемая версия формата: %d", data[0])
	}
	raw, err := decoder.DecodeAll(data[1:], nil)
	if err != nil {
		return rec, fmt.Errorf("ошибка распаковки сохранения: %w", err)
	}
	if err := msgpack.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("ошибка десериализации сохранения: %w", err)
	}
	return rec, nil
}
