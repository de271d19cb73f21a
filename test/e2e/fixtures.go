package e2e

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/hyperjump/seisho/internal/config"
	"github.com/hyperjump/seisho/internal/models"
)

// WriteVolumes writes each volume of c under dir, rotating through the supported
// file formats: plain JSON, xz-compressed JSON and zstd-compressed OSIS.
func WriteVolumes(dir string, c *Corpus) ([]config.VolumeConfig, error) {
	out := make([]config.VolumeConfig, 0, len(c.Volumes))
	for i, vol := range c.Volumes {
		var (
			name string
			data []byte
			err  error
		)
		switch i % 3 {
		case 0:
			name = fmt.Sprintf("volume-%d.json", i+1)
			data, err = volumeJSON(vol)
		case 1:
			name = fmt.Sprintf("volume-%d.json.xz", i+1)
			if data, err = volumeJSON(vol); err == nil {
				data, err = xzCompress(data)
			}
		default:
			name = fmt.Sprintf("volume-%d.osis.xml.zst", i+1)
			if data, err = volumeOSIS(vol); err == nil {
				data, err = zstdCompress(data)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", vol.Name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return nil, err
		}
		out = append(out, config.VolumeConfig{Name: vol.Name, Path: name})
	}
	return out, nil
}

func volumeJSON(vol *models.Volume) ([]byte, error) {
	return json.Marshal(map[string]interface{}{"books": vol.Books})
}

func volumeOSIS(vol *models.Volume) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace"><osisText>` + "\n")
	for _, book := range vol.Books {
		fmt.Fprintf(&buf, `<div type="book" osisID="%s" n="%s">`+"\n", book.Name, book.Name)
		for _, ch := range book.Chapters {
			fmt.Fprintf(&buf, `<chapter osisID="%s.%d">`, book.Name, ch.Number)
			for _, v := range ch.Verses {
				fmt.Fprintf(&buf, `<verse osisID="%s.%d.%d">`, book.Name, ch.Number, v.Number)
				if err := xml.EscapeText(&buf, []byte(v.Text)); err != nil {
					return nil, err
				}
				buf.WriteString("</verse>")
			}
			buf.WriteString("</chapter>\n")
		}
		buf.WriteString("</div>\n")
	}
	buf.WriteString("</osisText></osis>\n")
	return buf.Bytes(), nil
}

func xzCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func zstdCompress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}
