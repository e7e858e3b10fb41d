package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// DecodePCM16 converts 16-bit little-endian PCM bytes to normalized
// float samples in [-1, 1). A trailing odd byte is dropped.
func DecodePCM16(data []byte) []float64 {
	samples := make([]float64, len(data)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float64(s) / 32768.0
	}
	return samples
}

// EncodePCM16 converts normalized float samples to 16-bit little-endian
// PCM bytes. Samples outside [-1, 1] are clipped.
func EncodePCM16(samples []float64) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		v := int16(s * 32767.0)
		binary.LittleEndian.PutUint16(data[i*2:], uint16(v))
	}
	return data
}

// ResampleFloats linearly resamples mono float samples from srcRate to
// dstRate.
func ResampleFloats(samples []float64, srcRate, dstRate int) []float64 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(dstRate) / float64(srcRate)
	newLen := int(float64(len(samples)) * ratio)
	result := make([]float64, newLen)

	for i := 0; i < newLen; i++ {
		srcIdx := float64(i) / ratio
		idx := int(srcIdx)
		if idx >= len(samples)-1 {
			result[i] = samples[len(samples)-1]
		} else {
			frac := srcIdx - float64(idx)
			result[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
		}
	}

	return result
}

// DecodeBase64PCM decodes a base64-encoded PCM16 payload.
func DecodeBase64PCM(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("audio: decode base64 pcm: %w", err)
	}
	return data, nil
}
