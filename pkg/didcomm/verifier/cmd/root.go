/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/hyperledger/indy-vdr/wrappers/golang/vdr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/scoir/procyon/pkg/amqp"
	"github.com/scoir/procyon/pkg/amqp/rabbitmq"
	"github.com/scoir/procyon/pkg/config"
	"github.com/scoir/procyon/pkg/datastore"
	"github.com/scoir/procyon/pkg/didcomm/verifier"
	"github.com/scoir/procyon/pkg/indy"
	"github.com/scoir/procyon/pkg/presentproof"
	"github.com/scoir/procyon/pkg/revocation"
	"github.com/scoir/procyon/pkg/ursa"
)

var (
	cfgFile        string
	ctx            *Provider
	configProvider config.Provider
)

var rootCmd = &cobra.Command{
	Use:   "procyon-verifier",
	Short: "The procyon didcomm verifier.",
	Long:  `Drives present-proof exchanges as the verifying party.`,
}

type Provider struct {
	conf      config.Config
	store     datastore.Store
	listener  amqp.Listener
	responder presentproof.Responder
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	configProvider = &config.ViperConfigProvider{
		DefaultConfigName: "procyon-verifier-config",
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/procyon/procyon-verifier-config.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	conf := configProvider.Load(cfgFile).
		WithDatastore().
		WithAMQP().
		WithLedgerGenesis()

	dc, err := conf.DataStore()
	if err != nil {
		log.Fatalln("invalid datastore key in configuration", err)
	}

	sp, err := dc.StorageProvider()
	if err != nil {
		log.Fatalln(err)
	}

	store, err := sp.OpenStore(dc.Mongo.Database)
	if err != nil {
		log.Fatalln("unable to open datastore", err)
	}

	amqpConfig, err := conf.AMQPConfig()
	if err != nil {
		log.Fatalln("invalid amqp key in configuration", err)
	}

	listener, err := rabbitmq.NewListener(amqpConfig.Endpoint(), amqpConfig.Queue)
	if err != nil {
		log.Fatalln("unable to listen on present-proof queue", err)
	}

	replyQueue := conf.GetString("amqp.replyQueue")
	if replyQueue == "" {
		replyQueue = "present-proof-reply"
	}

	publisher, err := rabbitmq.NewPublisher(amqpConfig.Endpoint(), replyQueue)
	if err != nil {
		log.Fatalln("unable to publish on reply queue", err)
	}

	ctx = &Provider{
		conf:      conf,
		store:     store,
		listener:  listener,
		responder: rabbitmq.NewResponder(publisher),
	}
}

func (r *Provider) Store() datastore.Store {
	return r.store
}

func (r *Provider) Listener() amqp.Listener {
	return r.listener
}

func (r *Provider) Responder() presentproof.Responder {
	return r.responder
}

// Holder is nil on the verifying side; this process never assembles proofs.
func (r *Provider) Holder() presentproof.Holder {
	return nil
}

func (r *Provider) Ledger() presentproof.Ledger {
	genesis := r.conf.LedgerGenesis()

	return indy.NewLedger(func() (indy.VDRClient, error) {
		re := strings.NewReader(genesis)
		cl, err := vdr.New(ioutil.NopCloser(re))
		if err != nil {
			return nil, errors.Wrap(err, "unable to get indy vdr client")
		}

		return cl, nil
	})
}

func (r *Provider) Verifier() presentproof.Verifier {
	return ursa.NewProofVerifier()
}

func (r *Provider) Oracle() presentproof.Oracle {
	return &ursa.CryptoOracle{}
}

func (r *Provider) Revocation() presentproof.RevocationProvider {
	return revocation.NewProvider(r.conf.TailsDir(), nil)
}

func (r *Provider) PresentationManager() (verifier.PresentationManager, error) {
	return presentproof.New(r)
}
