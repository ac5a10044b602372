package config

import (
	"context"
	"os"
	"time"

	n "github.com/rjeczalik/notify"
	log "github.com/sirupsen/logrus"
)

// MaxRetries How many times to look for a config file that was replaced
const MaxRetries = 100

// Watch Logs a warning whenever the config file changes on disk
//
// The running configuration is immutable, so a change only takes effect
// after a restart. Blocks until ctx is cancelled.
func Watch(ctx context.Context, filename string) (err error) {
	log.Infof("Setting up watch for config file %s", filename)
	events := []n.Event{n.Remove, n.Rename, n.Write}
	channel := make(chan n.EventInfo, 1)
	if err = n.Watch(filename, channel, events...); err != nil {
		return
	}
	defer func() {
		n.Stop(channel)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ei := <-channel:
			switch ei.Event() {
			// Editors such as VIM rename the old buffer and recreate the
			// file in place, so the watch has to be set up again.
			case n.Rename, n.Remove:
				var i int = 0
				for {
					if _, err := os.Stat(filename); err == nil {
						break
					}
					if i == MaxRetries {
						log.Warnf("Config file %s has been removed", filename)
						break
					}
					i++
					<-time.After(1 * time.Millisecond)
				}
				n.Stop(channel)
				if err := n.Watch(filename, channel, events...); err != nil {
					log.Errorf("Unable to re-establish watch on config file %s - %s", filename, err)
					<-ctx.Done()
					return nil
				}
				fallthrough
			case n.Write:
				log.Warnf("Config file %s changed on disk. Restart the service to apply it", filename)
			}
		}
	}
}
