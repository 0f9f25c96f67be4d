package acquire

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/gjson"
)

var ErrNoMatchingVersion = errors.New("no published version matches")

// Release is one published version of a package.
type Release struct {
	Version string
	Tarball string
}

// ResolveRelease picks a version from npm package metadata. An empty
// constraint selects the latest dist-tag; otherwise the highest version
// satisfying the constraint wins.
func ResolveRelease(metadata []byte, constraint string) (*Release, error) {
	if !gjson.ValidBytes(metadata) {
		return nil, errors.New("registry metadata is not valid JSON")
	}
	doc := gjson.ParseBytes(metadata)
	versions := doc.Get("versions")
	if !versions.IsObject() {
		return nil, errors.New("registry metadata has no versions")
	}
	target, err := pickVersion(doc, versions, constraint)
	if err != nil {
		return nil, err
	}
	var tarball string
	versions.ForEach(func(key, value gjson.Result) bool {
		if key.String() == target {
			tarball = value.Get("dist.tarball").String()
			return false
		}
		return true
	})
	if tarball == "" {
		return nil, fmt.Errorf("version %s has no tarball", target)
	}
	return &Release{Version: target, Tarball: tarball}, nil
}

func pickVersion(doc, versions gjson.Result, constraint string) (string, error) {
	if constraint == "" {
		latest := doc.Get("dist-tags.latest").String()
		if latest == "" {
			return "", errors.New("registry metadata has no latest dist-tag")
		}
		return latest, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	var best *semver.Version
	var bestRaw string
	versions.ForEach(func(key, _ gjson.Result) bool {
		v, err := semver.NewVersion(key.String())
		if err != nil || !c.Check(v) {
			return true
		}
		if best == nil || v.GreaterThan(best) {
			best, bestRaw = v, key.String()
		}
		return true
	})
	if best == nil {
		return "", fmt.Errorf("%w %q", ErrNoMatchingVersion, constraint)
	}
	return bestRaw, nil
}
