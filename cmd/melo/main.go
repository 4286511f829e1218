// Command melo compiles melo notation to MIDI, WAV or a YAML timeline dump.
package main

import (
	"flag"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/Mistodon/melo"
)

func main() {
	var (
		filePath   = flag.String("file", "", "path to a melo source file")
		inline     = flag.String("text", "", "inline melo source")
		midOut     = flag.String("mid", "", "write a Standard MIDI File to this path")
		wavOut     = flag.String("wav", "", "render audio to this WAV path (requires -soundfont)")
		sfPath     = flag.String("soundfont", "", "SF2 soundfont for audio rendering")
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate for -wav")
		dump       = flag.Bool("dump-timeline", false, "print the compiled timeline as YAML")
	)
	flag.Parse()

	src, err := resolveInput(*filePath, *inline)
	if err != nil {
		log.Fatal("read input", "err", err)
	}

	tl, err := melo.Compile(src)
	if err != nil {
		log.Fatal("compile", "err", err)
	}
	log.Info("compiled", "voices", len(tl.Voices), "events", len(tl.Events), "bars", tl.Duration().String())

	if *dump {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(tl); err != nil {
			log.Fatal("encode timeline", "err", err)
		}
		enc.Close()
	}

	if *midOut != "" {
		f, err := os.Create(*midOut)
		if err != nil {
			log.Fatal("create midi file", "err", err)
		}
		if err := melo.WriteMIDI(tl, f); err != nil {
			f.Close()
			log.Fatal("write midi", "err", err)
		}
		if err := f.Close(); err != nil {
			log.Fatal("close midi file", "err", err)
		}
		log.Info("wrote midi", "path", *midOut)
	}

	if *wavOut != "" {
		if *sfPath == "" {
			log.Fatal("-wav requires -soundfont")
		}
		sf, err := melo.LoadSoundFont(*sfPath)
		if err != nil {
			log.Fatal("load soundfont", "err", err)
		}
		samples, err := melo.RenderSamples(tl, sf, *sampleRate)
		if err != nil {
			log.Fatal("render", "err", err)
		}
		wav := melo.EncodeWAVFloat32LE(samples, *sampleRate, 2)
		if err := os.WriteFile(*wavOut, wav, 0o644); err != nil {
			log.Fatal("write wav", "err", err)
		}
		log.Info("wrote wav", "path", *wavOut, "samples", len(samples)/2)
	}
}

func resolveInput(path, inline string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
