package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrdg/garden/synth"
	wav "github.com/youpy/go-wav"
)

// exportCatalog writes every sound in c to dir as <name>.wav.
func exportCatalog(c *synth.Catalog, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range c.Names() {
		buf, _ := c.Get(name)
		if err := writeWAV(filepath.Join(dir, name+".wav"), buf); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	logger.Info("exported sounds", "count", c.Len(), "dir", dir)
	return nil
}

func writeWAV(path string, buf *synth.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeWAV(f, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeWAV(w io.Writer, buf *synth.Buffer) error {
	samples := make([]wav.Sample, buf.Frames())
	for i := range samples {
		for ch := 0; ch < synth.NumChannels; ch++ {
			samples[i].Values[ch] = buf.PCM.Data[i*synth.NumChannels+ch]
		}
	}
	writer := wav.NewWriter(w, uint32(len(samples)), synth.NumChannels, uint32(buf.SampleRate()), synth.BitDepth)
	return writer.WriteSamples(samples)
}
