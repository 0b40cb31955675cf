package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"github.com/dashlens/dashlens-ocr/internal/pipeline"
)

func resolveImagesToProcess(inputPath string) (images []string, e *xerr.Error) {
	trimmed := strings.TrimSpace(inputPath)
	info, statErr := os.Stat(trimmed)
	if statErr != nil {
		e = xerr.NewError(statErr, "stat -image input path", trimmed)
		return
	}

	if info.IsDir() {
		return listImagesInDir(trimmed)
	}

	ext := strings.ToLower(filepath.Ext(trimmed))
	if !isAllowedImageExt(ext) {
		err := fmt.Errorf("unsupported image extension: %s", ext)
		e = xerr.NewError(err, "input file is not .png/.jpg/.jpeg/.gif", trimmed)
		return
	}

	return []string{trimmed}, nil
}

func listImagesInDir(dirPath string) (images []string, e *xerr.Error) {
	entries, readErr := os.ReadDir(dirPath)
	if readErr != nil {
		e = xerr.NewError(readErr, "read directory", dirPath)
		return
	}

	for _, ent := range entries {
		if ent.IsDir() || !isAllowedImageExt(filepath.Ext(ent.Name())) {
			continue
		}
		images = append(images, filepath.Join(dirPath, ent.Name()))
	}

	sort.Strings(images)
	if len(images) > 1 {
		tl.Log(tl.Notice1, palette.GreenBold, "Found '%d' screenshots to process", len(images))
	}
	return
}

func isAllowedImageExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	default:
		return false
	}
}

func isDir(path string) bool {
	info, err := os.Stat(strings.TrimSpace(path))
	return err == nil && info.IsDir()
}

func readItems(paths []string) (items []pipeline.Item, e *xerr.Error) {
	for _, path := range paths {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			e = xerr.NewError(readErr, "read screenshot", path)
			return nil, e
		}
		items = append(items, pipeline.Item{Name: path, Data: data})
	}
	return items, nil
}

/*
writeJSON pretty-prints value to destinationPath, or to stdout when the
path is empty.
*/
func writeJSON(destinationPath string, value any) (e *xerr.Error) {
	jsonBytes, marshalErr := json.MarshalIndent(value, "", "  ")
	if marshalErr != nil {
		e = xerr.NewError(marshalErr, "marshal result to JSON", destinationPath)
		return e
	}

	if destinationPath == "" {
		fmt.Println(string(jsonBytes))
		return nil
	}

	writeErr := os.WriteFile(destinationPath, jsonBytes, 0o644)
	if writeErr != nil {
		e = xerr.NewError(writeErr, "write JSON file", destinationPath)
		return e
	}
	tl.Log(tl.Info1, palette.Green, "Saved results to '%s'", destinationPath)
	return nil
}
