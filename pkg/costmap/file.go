package costmap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// costmapFile on disk representation of a costmap.
//
//	topic: global_costmap/costmap_raw
//	size_x: 4
//	size_y: 2
//	resolution: 0.5
//	origin_x: 0
//	origin_y: 0
//	data: [0, 0, 254, 0, 0, 0, 0, 255]
type costmapFile struct {
	Topic      string  `yaml:"topic"`
	SizeX      uint32  `yaml:"size_x"`
	SizeY      uint32  `yaml:"size_y"`
	Resolution float64 `yaml:"resolution"`
	OriginX    float64 `yaml:"origin_x"`
	OriginY    float64 `yaml:"origin_y"`
	Data       []int   `yaml:"data"`
}

// ParseCostmap decodes a yaml costmap document. returns the costmap and its topic (may be empty).
func ParseCostmap(raw []byte) (*Costmap, string, error) {
	var f costmapFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidCostmap, err)
	}
	data := make([]uint8, len(f.Data))
	for i, v := range f.Data {
		if v < 0 || v > 255 {
			return nil, "", fmt.Errorf("%w: cell %d has cost %d outside [0, 255]", ErrInvalidCostmap, i, v)
		}
		data[i] = uint8(v)
	}
	cm, err := NewCostmap(f.SizeX, f.SizeY, f.Resolution, f.OriginX, f.OriginY, data)
	if err != nil {
		return nil, "", err
	}
	return cm, f.Topic, nil
}

func ReadCostmapFile(path string) (*Costmap, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return ParseCostmap(raw)
}

// LoadFile reads a yaml costmap and publishes it on its topic, or on defaultTopic if the file has none.
func LoadFile(hub *Hub, path, defaultTopic string) (string, error) {
	cm, topic, err := ReadCostmapFile(path)
	if err != nil {
		return "", err
	}
	if topic == "" {
		topic = defaultTopic
	}
	hub.Publish(topic, cm)
	return topic, nil
}

// WatchFile loads path once and republishes it every time the file is written, until ctx is done.
func WatchFile(ctx context.Context, hub *Hub, path, defaultTopic string, logger *zap.Logger) error {
	topic, err := LoadFile(hub, path, defaultTopic)
	if err != nil {
		return err
	}
	logger.Info("costmap loaded", zap.String("path", path), zap.String("topic", topic))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// watch the directory, editors usually replace the file instead of writing to it
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				topic, err := LoadFile(hub, path, defaultTopic)
				if err != nil {
					logger.Warn("failed to reload costmap", zap.String("path", path), zap.Error(err))
					continue
				}
				logger.Debug("costmap reloaded", zap.String("path", path), zap.String("topic", topic))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("costmap watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
