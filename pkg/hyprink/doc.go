// Package hyprink provides structured diagnostic logging with named presets
// and a packaging engine that turns a directory tree into a single verified
// file.
//
// Quick start:
//
//	hk, err := hyprink.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer hk.Close()
//
//	hk.SetAppName("deployer")
//	hk.Log(hyprink.LevelInfo, "build", "compiling <bold>release</bold>")
//	if err := hk.LogPreset("pack_ok", ""); err != nil {
//	    log.Print(err)
//	}
//
//	sum, err := hk.Pack(ctx, "dist", "dist.pkg")
//
// Logging never fails: rendering problems are repaired and sink errors are
// swallowed. Every other operation returns an error and also records it as
// the Context's last error, which LastError and CopyLastError expose for
// callers that only see status codes.
//
// A Context is safe for concurrent use. Configuration is read from
// $HYPRINK_CONFIG or $XDG_CONFIG_HOME/hyprink/hyprink.toml when present;
// see WithConfigFile.
package hyprink
