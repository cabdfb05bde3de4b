package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/univexams/exam-portal/internal/core/domain"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// passwordSetter stores a password hash on an existing directory user.
type passwordSetter interface {
	SetPasswordHash(ctx context.Context, username, hash string) error
}

type commandLine struct {
	out     io.Writer
	errOut  io.Writer // prompts, so out carries only results
	cost    int
	connect func(ctx context.Context) (passwordSetter, func(), error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  hash-password                 - print a bcrypt hash for a prompted password")
	fmt.Fprintln(cli.out, "  set-password -username USER   - store a prompted password for a directory user")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setPasswordCmd := flag.NewFlagSet("set-password", flag.ContinueOnError)
	setPasswordCmd.SetOutput(cli.out)
	setPasswordUname := setPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	switch args[1] {
	case "hash-password":
		hash, err := cli.promptHash()
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, hash)
		return nil
	case "set-password":
		if err := setPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *setPasswordUname == "" {
			setPasswordCmd.Usage()
			return errHelp
		}
		hash, err := cli.promptHash()
		if err != nil {
			return err
		}
		return cli.setPassword(*setPasswordUname, hash)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptHash() (string, error) {
	fmt.Fprint(cli.errOut, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.errOut)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}

	cost := cli.cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(pwd, cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (cli *commandLine) setPassword(username, hash string) error {
	ctx := context.Background()
	store, closeFn, err := cli.connect(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.SetPasswordHash(ctx, username, hash); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return err
	}
	fmt.Fprintf(cli.out, "password updated for %s\n", username)
	return nil
}
