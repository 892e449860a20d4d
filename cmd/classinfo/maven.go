package main

import (
	"fmt"
	"strings"
)

const (
	defaultMavenRepo = "https://repo1.maven.org/maven2"
	mavenScheme      = "maven:"
)

// mavenCoordinate names a jar published to a Maven repository, written as
// maven:group:artifact:version[:classifier].
type mavenCoordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
}

func isMaven(location string) bool {
	return strings.HasPrefix(location, mavenScheme)
}

func parseMavenCoordinate(location string) (mavenCoordinate, error) {
	parts := strings.Split(strings.TrimPrefix(location, mavenScheme), ":")
	if len(parts) < 3 || len(parts) > 4 {
		return mavenCoordinate{}, fmt.Errorf("maven coordinate %q: want group:artifact:version[:classifier]", location)
	}
	for _, p := range parts {
		if p == "" {
			return mavenCoordinate{}, fmt.Errorf("maven coordinate %q: empty component", location)
		}
	}
	c := mavenCoordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// JarURL lays the coordinate out the way Maven repositories store jars.
func (c mavenCoordinate) JarURL(repo string) string {
	repo = strings.TrimSuffix(repo, "/")
	groupPath := strings.ReplaceAll(c.GroupID, ".", "/")
	file := c.ArtifactID + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s.jar", repo, groupPath, c.ArtifactID, c.Version, file)
}
