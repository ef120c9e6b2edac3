/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"crypto/sha256"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/scoir/procyon/pkg/presentproof"
	"github.com/scoir/procyon/pkg/schema"
)

// StateBuilder computes a revocation state from a registry's tails data and
// an accumulator delta. The cryptographic construction lives behind this
// interface.
//go:generate mockery -inpkg -name=StateBuilder
type StateBuilder interface {
	BuildState(regDef *schema.RevocationRegistryDefinition, tailsPath, credRevID string,
		delta *schema.RevocationRegistryDelta, timestamp int64) (json.RawMessage, error)
}

// Provider builds registry capabilities over a shared local tails directory.
type Provider struct {
	tailsDir string
	builder  StateBuilder
}

func NewProvider(tailsDir string, builder StateBuilder) *Provider {
	return &Provider{
		tailsDir: tailsDir,
		builder:  builder,
	}
}

func (r *Provider) FromDefinition(def *schema.RevocationRegistryDefinition) (presentproof.RevocationRegistry, error) {
	if def == nil || def.ID == "" {
		return nil, errors.New("revocation registry definition missing")
	}

	return &Registry{
		def:      def,
		tailsDir: r.tailsDir,
		builder:  r.builder,
	}, nil
}

// Registry manages one revocation registry's tails file and revocation
// states. Tails data is cached under the provider's tails directory, named by
// the registry's tails hash.
type Registry struct {
	def      *schema.RevocationRegistryDefinition
	tailsDir string
	builder  StateBuilder
}

// TailsLocalPath is where the registry's tails file lives once downloaded.
func (r *Registry) TailsLocalPath() string {
	return filepath.Join(r.tailsDir, r.def.Value.TailsHash)
}

func (r *Registry) HasLocalTailsFile() bool {
	info, err := os.Stat(r.TailsLocalPath())
	return err == nil && info.Mode().IsRegular()
}

// RetrieveTails downloads the tails file from the registry's public location
// and verifies its hash before keeping it.
func (r *Registry) RetrieveTails() error {
	if r.def.Value.TailsLocation == "" {
		return errors.New("tails file public location is empty")
	}

	resp, err := http.Get(r.def.Value.TailsLocation)
	if err != nil {
		return errors.Wrap(err, "error retrieving tails file")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("error retrieving tails file: status %d", resp.StatusCode)
	}

	err = os.MkdirAll(r.tailsDir, 0700)
	if err != nil {
		return errors.Wrap(err, "unable to create tails directory")
	}

	tmp, err := os.Create(r.TailsLocalPath() + ".tmp")
	if err != nil {
		return errors.Wrap(err, "unable to create tails file")
	}

	hasher := sha256.New()
	_, err = io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "error writing tails file")
	}

	err = tmp.Close()
	if err != nil {
		return errors.Wrap(err, "error closing tails file")
	}

	downloaded := base58.Encode(hasher.Sum(nil))
	if downloaded != r.def.Value.TailsHash {
		_ = os.Remove(tmp.Name())
		return errors.Errorf("downloaded tails hash %s does not match %s", downloaded, r.def.Value.TailsHash)
	}

	err = os.Rename(tmp.Name(), r.TailsLocalPath())
	if err != nil {
		return errors.Wrap(err, "unable to move tails file into place")
	}

	logrus.WithFields(logrus.Fields{
		"registry_id": r.def.ID,
		"tails_path":  r.TailsLocalPath(),
	}).Debug("retrieved tails file")

	return nil
}

func (r *Registry) CreateRevocationState(credRevID string, delta *schema.RevocationRegistryDelta,
	timestamp int64) (json.RawMessage, error) {

	if r.builder == nil {
		return nil, errors.New("no revocation state builder configured")
	}

	state, err := r.builder.BuildState(r.def, r.TailsLocalPath(), credRevID, delta, timestamp)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to build revocation state for %s", r.def.ID)
	}

	return state, nil
}
