// Copyright 2020 Adam Chalkley
//
// https://github.com/Vash63/x509chain
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

import "flag"

// handleFlagsConfig handles toggling the exposure of specific configuration
// flags to the user. The appType value, set by each cmd, determines which
// subset of flags is exposed and processed: a smaller set specific to the
// inspector cmd, or the full set used by the Nagios plugin.
func (c *Config) handleFlagsConfig(appType AppType) {

	// Flags specific to one or the other
	switch {
	case appType.Plugin:
		flag.BoolVar(&c.EmitBranding, "branding", defaultBranding, brandingFlagHelp)
	case appType.Inspector:
		flag.StringVar(&c.Filename, "filename", defaultFilename, filenameFlagHelp)
		flag.BoolVar(&c.EmitCertText, "text", defaultEmitCertText, emitCertTextFlagHelp)
	}

	// Shared flags

	flag.Var(&c.SANsEntries, SANsEntriesFlagShort, sansEntriesFlagHelp)
	flag.Var(&c.SANsEntries, SANsEntriesFlagLong, sansEntriesFlagHelp)

	flag.IntVar(&c.AgeWarning, AgeWarningFlagShort, defaultCertExpireAgeWarning, certExpireAgeWarningFlagHelp)
	flag.IntVar(&c.AgeWarning, AgeWarningFlagLong, defaultCertExpireAgeWarning, certExpireAgeWarningFlagHelp)

	flag.IntVar(&c.AgeCritical, AgeCriticalFlagShort, defaultCertExpireAgeCritical, certExpireAgeCriticalFlagHelp)
	flag.IntVar(&c.AgeCritical, AgeCriticalFlagLong, defaultCertExpireAgeCritical, certExpireAgeCriticalFlagHelp)

	flag.StringVar(&c.Server, ServerFlagShort, defaultServer, serverFlagHelp)
	flag.StringVar(&c.Server, ServerFlagLong, defaultServer, serverFlagHelp)

	flag.StringVar(&c.DNSName, DNSNameFlagShort, defaultDNSName, dnsNameFlagHelp)
	flag.StringVar(&c.DNSName, DNSNameFlagLong, defaultDNSName, dnsNameFlagHelp)

	flag.IntVar(&c.Port, PortFlagShort, defaultPort, portFlagHelp)
	flag.IntVar(&c.Port, PortFlagLong, defaultPort, portFlagHelp)

	flag.IntVar(&c.timeout, TimeoutFlagShort, defaultConnectTimeout, timeoutConnectFlagHelp)
	flag.IntVar(&c.timeout, TimeoutFlagLong, defaultConnectTimeout, timeoutConnectFlagHelp)

	flag.StringVar(&c.LoggingLevel, LogLevelFlagShort, defaultLogLevel, logLevelFlagHelp)
	flag.StringVar(&c.LoggingLevel, LogLevelFlagLong, defaultLogLevel, logLevelFlagHelp)

	flag.BoolVar(&c.ShowVersion, VerboseFlagShort, defaultDisplayVersionAndExit, versionFlagHelp)
	flag.BoolVar(&c.ShowVersion, VersionFlagLong, defaultDisplayVersionAndExit, versionFlagHelp)

	flag.BoolVar(&c.VerboseOutput, VerboseOutputFlagLong, defaultVerboseOutput, verboseOutputFlagHelp)

	flag.BoolVar(
		&c.IgnoreHostnameVerificationFailureIfEmptySANsList,
		IgnoreHostnameVerificationFailureIfEmptySANsListFlag,
		defaultIgnoreHostnameVerificationIfEmptySANsList,
		ignoreHostnameVerificationFailureIfEmptySANsListFlagHelp,
	)

	flag.BoolVar(
		&c.IgnoreExpiredIntermediateCertificates,
		IgnoreExpiredIntermediateCertificatesFlag,
		defaultIgnoreExpiredIntermediateCertificates,
		ignoreExpiredIntermediateCertificatesFlagHelp,
	)

	flag.BoolVar(
		&c.IgnoreExpiredRootCertificates,
		IgnoreExpiredRootCertificatesFlag,
		defaultIgnoreExpiredRootCertificates,
		ignoreExpiredRootCertificatesFlagHelp,
	)

	flag.BoolVar(
		&c.IgnoreExpiringIntermediateCertificates,
		IgnoreExpiringIntermediateCertificatesFlag,
		defaultIgnoreExpiringIntermediateCertificates,
		ignoreExpiringIntermediateCertificatesFlagHelp,
	)

	flag.BoolVar(
		&c.IgnoreExpiringRootCertificates,
		IgnoreExpiringRootCertificatesFlag,
		defaultIgnoreExpiringRootCertificates,
		ignoreExpiringRootCertificatesFlagHelp,
	)

	flag.Var(&c.ignoreValidationResults, IgnoreValidationResultFlag, ignoreValidationResultsFlagHelp)
	flag.Var(&c.applyValidationResults, ApplyValidationResultFlag, applyValidationResultsFlagHelp)

	flag.BoolVar(
		&c.ListIgnoredValidationCheckResultErrors,
		ListIgnoredErrorsFlag,
		defaultListIgnoredValidationCheckResultErrors,
		listIgnoredErrorsFlagHelp,
	)

	flag.BoolVar(&c.OmitSANsEntries, OmitSANsEntriesFlagLong, defaultOmitSANsEntries, omitSANsEntriesFlagHelp)

	flag.BoolVar(
		&c.EmitPayloadWithFullChain,
		EmitPayloadWithFullChainFlag,
		defaultEmitPayloadWithFullChain,
		emitPayloadWithFullChainFlagHelp,
	)

	flag.IntVar(
		&c.PayloadFormatVersion,
		PayloadFormatVersionFlagLong,
		defaultPayloadFormatVersion,
		payloadFormatVersionFlagHelp,
	)

	flag.StringVar(&c.EnginePolicy, PolicyFlagLong, defaultPolicy, policyFlagHelp)
	flag.StringVar(&c.RevocationMode, RevocationModeFlagLong, defaultRevocationMode, revocationModeFlagHelp)
	flag.StringVar(&c.TrustedRootFile, TrustedRootFileFlagLong, defaultTrustedRootFile, trustedRootFileFlagHelp)
	flag.StringVar(&c.RestrictedRootFile, RestrictedRootFileFlagLong, defaultRestrictedRootFile, restrictedRootFileFlagHelp)
	flag.IntVar(&c.CycleModulus, CycleModulusFlagLong, defaultCycleModulus, cycleModulusFlagHelp)
	flag.IntVar(&c.MaxCachedCerts, MaxCachedCertsFlagLong, defaultMaxCachedCerts, maxCachedCertsFlagHelp)
	flag.IntVar(&c.URLTimeout, URLTimeoutFlagLong, defaultURLTimeout, urlTimeoutFlagHelp)
	flag.IntVar(&c.RevocationTimeout, RevocationTimeoutFlagLong, defaultRevocationTimeout, revocationTimeoutFlagHelp)

	// Allow our function to override the default Help output
	flag.Usage = Usage

	// parse flag definitions from the argument list
	flag.Parse()

}
