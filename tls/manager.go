package tls

import (
	"crypto/tls"
	"net"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme"
	"golang.org/x/crypto/acme/autocert"

	"github.com/agrosud-co/site-service/types"
)

// CertManager terminates TLS for the public site. Either static cert
// files or autocert against Let's Encrypt, never both.
type CertManager struct {
	logger      types.Logger
	config      *types.TLSConfig
	autocertMgr *autocert.Manager
}

func NewCertManager(logger types.Logger, config *types.TLSConfig) (*CertManager, error) {
	cm := &CertManager{
		logger: logger,
		config: config,
	}

	if config.AutoCert {
		if len(config.Domains) == 0 {
			return nil, types.NewErrorf("autocert enabled but no domains configured")
		}

		cacheDir := config.CacheDir
		if cacheDir == "" {
			cacheDir = ".autocert-cache"
		}

		cm.autocertMgr = &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(config.Domains...),
			Cache:      autocert.DirCache(cacheDir),
			Client:     &acme.Client{DirectoryURL: acme.LetsEncryptURL},
		}

		logger.Info("Autocert manager initialized",
			zap.Strings("domains", config.Domains),
			zap.String("cache_dir", cacheDir))
	}

	return cm, nil
}

func (cm *CertManager) Listen(addr string) (net.Listener, error) {
	tlsConfig, err := cm.TLSConfig()
	if err != nil {
		return nil, err
	}

	ln, err := tls.Listen("tcp", addr, tlsConfig)
	if err != nil {
		return nil, types.WrapError(err, "create TLS listener")
	}

	return ln, nil
}

func (cm *CertManager) TLSConfig() (*tls.Config, error) {
	if cm.config.AutoCert {
		tlsConfig := cm.autocertMgr.TLSConfig()
		tlsConfig.MinVersion = tls.VersionTLS12
		return tlsConfig, nil
	}

	if cm.config.CertFile == "" || cm.config.KeyFile == "" {
		return nil, types.NewErrorf("TLS enabled but cert_file or key_file not specified")
	}

	cert, err := tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
	if err != nil {
		return nil, types.WrapError(err, "load TLS key pair")
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}
