// Package client speaks the chat and job protocols from the user's side.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
)

var ErrEmptyJob = errors.New("client: empty job")

const readChunk = 1024

func dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return conn, nil
}

// Chat sends lines read from in and writes everything the server sends to
// out, one chunk per line. Line endings are stripped and empty lines skipped. It returns once the
// server closes the connection, which follows exitCommand, or when in is
// exhausted or ctx is cancelled.
func Chat(ctx context.Context, addr string, in io.Reader, out io.Writer, exitCommand string) error {
	conn, err := dial(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	go sendLines(conn, in, exitCommand)

	err = display(out, conn)
	if err != nil && (errors.Is(err, net.ErrClosed) || ctx.Err() != nil) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("receive: %w", err)
	}
	return nil
}

// display writes each chunk read from conn to out, ending it with a newline
// when the server did not send one.
func display(out io.Writer, conn net.Conn) error {
	buf := make([]byte, readChunk)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if chunk[n-1] != '\n' {
				chunk = append(chunk, '\n')
			}
			if _, werr := out.Write(chunk); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func sendLines(conn net.Conn, in io.Reader, exitCommand string) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			return
		}
		if line == exitCommand {
			// the server answers and closes
			return
		}
	}
	closeWrite(conn)
}

func closeWrite(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
		return
	}
	_ = conn.Close()
}

// SubmitJob sends one job and returns the server's acknowledgement.
func SubmitJob(ctx context.Context, addr, job string) (string, error) {
	job = strings.TrimRight(job, "\r\n")
	if job == "" {
		return "", ErrEmptyJob
	}

	conn, err := dial(ctx, addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if _, err := conn.Write([]byte(job)); err != nil {
		return "", fmt.Errorf("send job: %w", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read acknowledgement: %w", err)
	}
	return string(reply), nil
}
