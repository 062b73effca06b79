package conf

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempKey(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(path, []byte("not a real key"), 0o600); err != nil {
		t.Fatalf("writing temp key: %v", err)
	}
	return path
}

func TestLoadFromFileClientRole(t *testing.T) {
	dir := t.TempDir()
	key := writeTempKey(t, dir)

	yamlBody := `
role: client
tap:
  name: walt0
ssh:
  host: vpn.example.com
  user: tunnel
  private_key_path: ` + key + `
`
	path := filepath.Join(dir, "client.yaml")
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Role != "client" {
		t.Errorf("expected role=client, got %s", c.Role)
	}
	if c.SSH.Port != 22 {
		t.Errorf("expected default ssh port 22, got %d", c.SSH.Port)
	}
	if c.SSH.RemoteCommand != "walt-vpn-endpoint" {
		t.Errorf("expected default remote command, got %q", c.SSH.RemoteCommand)
	}
	if c.Core.MaxPayload != 4096 {
		t.Errorf("expected default max_payload 4096, got %d", c.Core.MaxPayload)
	}
	if c.Core.RingSize != 1<<16 {
		t.Errorf("expected default ring_size 65536, got %d", c.Core.RingSize)
	}
}

func TestLoadFromFileInvalidRole(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("role: bogus\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Errorf("expected error for invalid role")
	}
}

func TestLoadFromFileClientMissingSSH(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	body := "role: client\ntap:\n  name: walt0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Errorf("expected validation error for missing ssh section")
	}
}

func TestLoadFromFileServerDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	if err := os.WriteFile(path, []byte("role: server\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Server.ControlSocket != "/run/walt/control.sock" {
		t.Errorf("unexpected default control socket: %s", c.Server.ControlSocket)
	}
	if c.Server.L2TPAddr != "0.0.0.0:1701" {
		t.Errorf("unexpected default l2tp addr: %s", c.Server.L2TPAddr)
	}
}

func TestCoreValidateRingTooSmall(t *testing.T) {
	core := Core{MaxPayload: 4096, RingSize: 100, PacketBatchSize: 32}
	errs := core.validate()
	if len(errs) == 0 {
		t.Errorf("expected error for ring_size smaller than 2x max_payload")
	}
}

func TestLogValidateLevelNames(t *testing.T) {
	l := Log{Level: "debug"}
	if errs := l.validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}

	l2 := Log{Level: "bogus"}
	if errs := l2.validate(); len(errs) == 0 {
		t.Errorf("expected error for invalid log level")
	}
}
