package atendente

// Version is the toolkit version, overridden at build time with
// -ldflags "-X github.com/painelbot/atendente.Version=...".
var Version = "0.1.0"
