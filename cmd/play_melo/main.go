// Command play_melo compiles a melo source file and plays it through the
// system audio device.
package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"github.com/Mistodon/melo"
)

func main() {
	var (
		filePath   = flag.String("file", "", "path to a melo source file")
		sfPath     = flag.String("soundfont", "", "SF2 soundfont (required)")
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		volume     = flag.Float64("volume", 1.0, "playback volume, 0 to 1")
	)
	flag.Parse()

	if *filePath == "" || *sfPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	tl, err := melo.CompileFile(*filePath)
	if err != nil {
		log.Fatal("compile", "err", err)
	}
	sf, err := melo.LoadSoundFont(*sfPath)
	if err != nil {
		log.Fatal("load soundfont", "err", err)
	}

	pl, err := melo.NewPlayer(*sampleRate, sf, melo.WithVolume(*volume))
	if err != nil {
		log.Fatal("new player", "err", err)
	}
	events := pl.Watch()
	if err := pl.Play(tl); err != nil {
		log.Fatal("play", "err", err)
	}
	log.Info("playing", "title", tl.Title, "tempo", tl.Tempo, "events", len(tl.Events))

	for ev := range events {
		if ev.Kind == melo.EventPlaybackEnded {
			log.Info("playback completed")
			break
		}
	}
	pl.Wait()
}
