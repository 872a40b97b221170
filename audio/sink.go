package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// BufferSize is the number of frames requested per audio callback.
const BufferSize = 512

type Source interface {
	Process([][]float32)
}

// Sink is the single audio output: a stereo portaudio stream on the
// default device, fed by the registered sources.
type Sink struct {
	sources []Source
	stream  *portaudio.Stream
}

func NewSink(sampleRate int, sources ...Source) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	s := &Sink{sources: sources}
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(sampleRate), BufferSize, s.Process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

func (s *Sink) Start() error {
	return s.stream.Start()
}

func (s *Sink) Stop() error {
	return errors.Join(
		s.stream.Stop(),
		s.stream.Close(),
		portaudio.Terminate(),
	)
}

func (s *Sink) Process(samples [][]float32) {
	for i := range samples {
		for j := range samples[i] {
			samples[i][j] = 0.
		}
	}
	for _, source := range s.sources {
		source.Process(samples)
	}
}
