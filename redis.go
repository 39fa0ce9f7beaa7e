package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// redisTarget is a parsed REDIS_URL.
type redisTarget struct {
	Addr     string
	Password string
	DB       int
}

func parseRedisURL(raw string) (redisTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return redisTarget{}, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if u.Scheme == "unix" {
		return redisTarget{}, fmt.Errorf("unix sockets not supported by this worker")
	}
	if u.Host == "" {
		return redisTarget{}, fmt.Errorf("REDIS_URL %q has no host", raw)
	}
	t := redisTarget{Addr: u.Host}
	if u.Port() == "" {
		t.Addr = u.Host + ":6379"
	}
	t.Password, _ = u.User.Password()
	if path := strings.TrimPrefix(u.Path, "/"); path != "" {
		db, err := strconv.Atoi(path)
		if err != nil {
			return redisTarget{}, fmt.Errorf("invalid redis database %q", path)
		}
		t.DB = db
	}
	return t, nil
}

func writeCommand(w *bufio.ReadWriter, cmd string, args ...string) error {
	if _, err := fmt.Fprintf(w, "*%d\r\n", 1+len(args)); err != nil {
		return err
	}
	if err := writeBulk(w, cmd); err != nil {
		return err
	}
	for _, a := range args {
		if err := writeBulk(w, a); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeBulk(w *bufio.ReadWriter, s string) error {
	_, err := fmt.Fprintf(w, "$%d\r\n%s\r\n", len(s), s)
	return err
}

func readLine(r *bufio.Reader) (string, error) {
	b, err := r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSuffix(string(b), "\n"), "\r"), nil
}

func readOK(rw *bufio.ReadWriter) error {
	line, err := readLine(rw.Reader)
	if err != nil {
		return err
	}
	if strings.HasPrefix(line, "+") {
		return nil
	}
	return fmt.Errorf("redis not OK: %s", line)
}

// readBulk reads one bulk string. A nil bulk ($-1) reads as "".
func readBulk(r *bufio.Reader) (string, error) {
	line, err := readLine(r)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(line, "$") {
		return "", fmt.Errorf("expected bulk string, got %q", line)
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil {
		return "", fmt.Errorf("bad bulk length %q", line)
	}
	if n < 0 {
		return "", nil
	}
	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// readBRPOP reads a BRPOP reply. A timeout yields empty key and payload.
func readBRPOP(rw *bufio.ReadWriter) (key string, payload string, err error) {
	line, err := readLine(rw.Reader)
	if err != nil {
		return "", "", err
	}
	if line == "" {
		return "", "", fmt.Errorf("empty reply")
	}
	switch line[0] {
	case '*':
		count, err := strconv.Atoi(line[1:])
		if err != nil {
			return "", "", fmt.Errorf("bad array header %q", line)
		}
		if count <= 0 {
			return "", "", nil
		}
		if count != 2 {
			return "", "", fmt.Errorf("unexpected BRPOP reply with %d elements", count)
		}
		if key, err = readBulk(rw.Reader); err != nil {
			return "", "", err
		}
		if payload, err = readBulk(rw.Reader); err != nil {
			return "", "", err
		}
		return key, payload, nil
	case '$':
		if line == "$-1" {
			return "", "", nil
		}
		return "", "", fmt.Errorf("unexpected bulk reply %q", line)
	case '-':
		return "", "", fmt.Errorf("redis error: %s", line[1:])
	default:
		return "", "", fmt.Errorf("unexpected reply: %s", line)
	}
}
