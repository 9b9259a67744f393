package media

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"quizmaster/internal/domain"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

const (
	TargetSampleRate = 16000
	wavHeaderSize    = 44
)

// CompressAudio decodes a WAV or MP3 file, downmixes it to mono, resamples it to 16 kHz and
// returns it as a 16-bit PCM WAV data URL.
func CompressAudio(r io.ReadSeeker) (string, error) {
	var (
		pcm      *audio.IntBuffer
		bitDepth int
		err      error
	)
	switch sniffAudio(r) {
	case "wav":
		pcm, bitDepth, err = decodeWAV(r)
	case "mp3":
		pcm, bitDepth, err = decodeMP3(r)
	default:
		return "", fmt.Errorf("decode audio: %w: unknown container", domain.ErrUnsupportedMedia)
	}
	if err != nil {
		return "", err
	}

	mono := Downmix(pcm, bitDepth)
	out := Resample(mono, TargetSampleRate)

	var buf bytes.Buffer
	if err := EncodeWAV(&buf, out); err != nil {
		return "", err
	}
	return DataURL("audio/wav", buf.Bytes()), nil
}

// sniffAudio names the container from its leading bytes and rewinds r.
func sniffAudio(r io.ReadSeeker) string {
	head := make([]byte, 4)
	n, _ := io.ReadFull(r, head)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return ""
	}
	head = head[:n]
	switch {
	case bytes.HasPrefix(head, []byte("RIFF")):
		return "wav"
	case bytes.HasPrefix(head, []byte("ID3")):
		return "mp3"
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return "mp3"
	}
	return ""
}

func decodeWAV(r io.ReadSeeker) (*audio.IntBuffer, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("decode audio: %w: not a PCM wav file", domain.ErrUnsupportedMedia)
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode audio: %w: %v", domain.ErrUnsupportedMedia, err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels < 1 || pcm.Format.SampleRate < 1 {
		return nil, 0, fmt.Errorf("decode audio: %w: missing format", domain.ErrUnsupportedMedia)
	}
	bitDepth := pcm.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	return pcm, bitDepth, nil
}

// decodeMP3 returns the stream as interleaved 16-bit stereo, the decoder's only output format.
func decodeMP3(r io.Reader) (*audio.IntBuffer, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("decode audio: %w: %v", domain.ErrUnsupportedMedia, err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("decode audio: %w: %v", domain.ErrUnsupportedMedia, err)
	}
	if len(raw) < 4 || dec.SampleRate() < 1 {
		return nil, 0, fmt.Errorf("decode audio: %w: empty mp3 stream", domain.ErrUnsupportedMedia)
	}

	data := make([]int, len(raw)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: dec.SampleRate()},
		Data:           data,
		SourceBitDepth: 16,
	}, 16, nil
}

// Downmix averages interleaved channels into a single channel of samples in [-1, 1].
func Downmix(pcm *audio.IntBuffer, bitDepth int) *audio.FloatBuffer {
	channels := pcm.Format.NumChannels
	scale := 1.0
	if bitDepth > 1 {
		scale = math.Exp2(float64(bitDepth - 1))
	}
	// 8-bit wav is unsigned.
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(pcm.Data) / channels
	data := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += (float64(pcm.Data[i*channels+c]) - offset) / scale
		}
		data[i] = sum / float64(channels)
	}
	return &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: pcm.Format.SampleRate},
		Data:   data,
	}
}

// Resample converts a mono buffer to rate with linear interpolation.
func Resample(in *audio.FloatBuffer, rate int) *audio.FloatBuffer {
	out := &audio.FloatBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: rate}}
	srcRate := in.Format.SampleRate
	if srcRate == rate || len(in.Data) == 0 {
		out.Data = append([]float64(nil), in.Data...)
		return out
	}

	n := int(math.Ceil(float64(len(in.Data)) * float64(rate) / float64(srcRate)))
	out.Data = make([]float64, n)
	step := float64(srcRate) / float64(rate)
	last := len(in.Data) - 1
	for i := range out.Data {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out.Data[i] = in.Data[last]
			continue
		}
		frac := pos - float64(j)
		out.Data[i] = in.Data[j]*(1-frac) + in.Data[j+1]*frac
	}
	return out
}

// EncodeWAV writes buf as 16-bit PCM behind the canonical 44-byte header.
// Samples are clamped to [-1, 1]; negatives scale by 32768 and positives by 32767.
func EncodeWAV(w io.Writer, buf *audio.FloatBuffer) error {
	channels := buf.Format.NumChannels
	rate := buf.Format.SampleRate
	dataLen := len(buf.Data) * 2

	out := make([]byte, wavHeaderSize+dataLen)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataLen))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(rate))
	binary.LittleEndian.PutUint32(out[28:], uint32(rate*2*channels))
	binary.LittleEndian.PutUint16(out[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataLen))

	off := wavHeaderSize
	for _, s := range buf.Data {
		s = math.Max(-1, math.Min(1, s))
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(out[off:], uint16(v))
		off += 2
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}
