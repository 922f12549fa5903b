package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phrazzld/cardledger/internal/api"
	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/service"
	"github.com/phrazzld/cardledger/internal/store"
)

const (
	msgSameAccount = "You can't transfer money to the same account!"
	msgBadAmount   = "Please enter a non-negative whole number."
	msgAccountGone = "Your account no longer exists."
	msgFailure     = "Something went wrong, please try again."
)

var (
	mainMenu = []string{
		"1. Create an account",
		"2. Log into account",
		"0. Exit",
	}
	accountMenu = []string{
		"1. Balance",
		"2. Add income",
		"3. Do transfer",
		"4. Close account",
		"5. Log out",
		"0. Exit",
	}
)

// cli drives one LedgerService from a line-oriented terminal.
type cli struct {
	ledger service.LedgerService
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

func newCLI(ledger service.LedgerService, in io.Reader, out io.Writer, logger *slog.Logger) *cli {
	if logger == nil {
		logger = slog.Default()
	}
	return &cli{
		ledger: ledger,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger.With(slog.String("component", "cli")),
	}
}

// Run shows the menu matching the session state until the user exits or
// input ends. Only input errors are returned.
func (c *cli) Run(ctx context.Context) error {
	for {
		_, loggedIn := c.ledger.Current()

		var (
			choice string
			ok     bool
		)
		if loggedIn {
			choice, ok = c.menu(accountMenu)
		} else {
			choice, ok = c.menu(mainMenu)
		}
		if !ok || choice == "0" {
			c.println("Bye!")
			return c.in.Err()
		}

		if loggedIn {
			c.accountAction(ctx, choice)
		} else {
			c.mainAction(ctx, choice)
		}
		c.println()
	}
}

// menu prints options until the user picks one of them.
func (c *cli) menu(options []string) (string, bool) {
	for {
		for _, option := range options {
			c.println(option)
		}
		choice, ok := c.prompt()
		if !ok {
			return "", false
		}
		c.println()

		for _, option := range options {
			if key, _, _ := strings.Cut(option, "."); key == choice {
				return choice, true
			}
		}
	}
}

func (c *cli) mainAction(ctx context.Context, choice string) {
	switch choice {
	case "1":
		c.createAccount(ctx)
	case "2":
		c.login(ctx)
	}
}

func (c *cli) accountAction(ctx context.Context, choice string) {
	switch choice {
	case "1":
		balance, err := c.ledger.Balance(ctx)
		if err != nil {
			c.fail(err)
			return
		}
		c.println("Balance:", balance)
	case "2":
		c.addIncome(ctx)
	case "3":
		c.transfer(ctx)
	case "4":
		if err := c.ledger.CloseSession(ctx); err != nil {
			c.fail(err)
			return
		}
		c.println(api.MsgAccountClosed)
	case "5":
		c.ledger.Logout()
		c.println(api.MsgLoggedOut)
	}
}

func (c *cli) createAccount(ctx context.Context) {
	account, err := c.ledger.CreateAccount(ctx)
	if err != nil {
		c.fail(err)
		return
	}
	c.println("Your card has been created")
	c.println("Your card number:")
	c.println(account.CardNumber())
	c.println("Your card PIN:")
	c.println(account.PIN)
}

func (c *cli) login(ctx context.Context) {
	c.println("Enter your card number:")
	cardNumber, _ := c.prompt()
	c.println("Enter your PIN:")
	pin, _ := c.prompt()
	c.println()

	if err := c.ledger.Authenticate(ctx, cardNumber, pin); err != nil {
		c.fail(err)
		return
	}
	if _, ok := c.ledger.Current(); !ok {
		c.println(api.MsgWrongCredentials)
		return
	}
	c.println("You have successfully logged in!")
}

func (c *cli) addIncome(ctx context.Context) {
	c.println("Enter income:")
	amount, ok := c.promptAmount()
	c.println()
	if !ok {
		return
	}

	if err := c.ledger.Deposit(ctx, amount); err != nil {
		c.fail(err)
		return
	}
	c.println(api.MsgIncomeAdded)
}

// transfer checks the destination before asking for the amount: Luhn first,
// then the session's own card, then existence.
func (c *cli) transfer(ctx context.Context) {
	c.println("Enter card number:")
	cardNumber, _ := c.prompt()

	if !domain.IsValidNumber(cardNumber) {
		c.println(api.MsgMistypedCard)
		return
	}
	if current, ok := c.ledger.Current(); ok && current.CardNumber() == cardNumber {
		c.println(msgSameAccount)
		return
	}

	exists, err := c.ledger.Exists(ctx, cardNumber)
	if err != nil {
		c.fail(err)
		return
	}
	if !exists {
		c.println(api.MsgNoSuchCard)
		return
	}

	c.println("Enter how much money you want to transfer:")
	amount, ok := c.promptAmount()
	if !ok {
		return
	}

	outcome, err := c.ledger.Transfer(ctx, cardNumber, amount)
	if err != nil {
		c.fail(err)
		return
	}
	switch outcome {
	case service.Transferred:
		c.println(api.MsgTransferSucceeded)
	case service.InsufficientFunds:
		c.println(api.MsgNotEnoughMoney)
	case service.AccountNotFound:
		c.println(api.MsgNoSuchCard)
	}
}

// fail reports an operation error without ending the loop.
func (c *cli) fail(err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		c.println(msgBadAmount)
	case errors.Is(err, store.ErrAccountNotFound):
		c.println(msgAccountGone)
	default:
		c.logger.Error("ledger operation failed", slog.String("error", err.Error()))
		c.println(msgFailure)
	}
}

// prompt prints ">" and reads one line.
func (c *cli) prompt() (string, bool) {
	fmt.Fprint(c.out, ">")
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *cli) promptAmount() (int64, bool) {
	line, ok := c.prompt()
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseInt(line, 10, 64)
	if err != nil || amount < 0 {
		c.println(msgBadAmount)
		return 0, false
	}
	return amount, true
}

func (c *cli) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}
