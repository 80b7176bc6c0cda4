// Package console implements the interactive text menus of the
// reservation system: a main menu, a user panel for booking and
// cancelling seats, and a password-gated admin panel for managing
// routes.  All state changes go through service.Service.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iliyamo/bus-seat-reservation/internal/booking"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/registry"
	"github.com/iliyamo/bus-seat-reservation/internal/service"
	"github.com/iliyamo/bus-seat-reservation/internal/store"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// errInputClosed unwinds the menus when the input stream ends.
var errInputClosed = errors.New("input closed")

// Console reads commands from in and writes prompts and results to out.
type Console struct {
	svc       *service.Service
	in        *bufio.Scanner
	out       io.Writer
	adminHash string
}

// New returns a Console driving svc.  adminHash is the bcrypt hash of the
// admin password.
func New(svc *service.Service, in io.Reader, out io.Writer, adminHash string) *Console {
	if svc == nil {
		panic("nil service passed to console.New")
	}
	return &Console{svc: svc, in: bufio.NewScanner(in), out: out, adminHash: adminHash}
}

// Run shows the main menu until the user exits or the input ends.  Both
// paths flush the store; the flush error, if any, is returned.
func (c *Console) Run(ctx context.Context) error {
	for {
		fmt.Fprint(c.out, "\n==========================================\n")
		fmt.Fprint(c.out, "    BUS RESERVATION SYSTEM MAIN MENU\n")
		fmt.Fprint(c.out, "==========================================\n")
		fmt.Fprint(c.out, "1. User Mode (Book/Cancel)\n")
		fmt.Fprint(c.out, "2. Admin Mode (Add Routes)\n")
		fmt.Fprint(c.out, "3. Exit\n")
		choice, err := c.prompt("Enter Choice: ")
		if err != nil {
			return c.exit(ctx)
		}

		switch choice {
		case "1":
			err = c.userMenu(ctx)
		case "2":
			err = c.adminMenu(ctx)
		case "3":
			return c.exit(ctx)
		default:
			fmt.Fprintln(c.out, "Invalid Choice!")
		}
		if errors.Is(err, errInputClosed) {
			return c.exit(ctx)
		}
	}
}

func (c *Console) exit(ctx context.Context) error {
	if err := c.svc.Flush(ctx); err != nil {
		fmt.Fprintf(c.out, "Error saving data! %v\n", err)
		return err
	}
	fmt.Fprintln(c.out, "Exiting... Data Saved.")
	return nil
}

func (c *Console) adminMenu(ctx context.Context) error {
	pass, err := c.prompt("\nEnter Admin Password: ")
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(c.adminHash, pass) {
		fmt.Fprintln(c.out, "Access Denied! Wrong Password.")
		return nil
	}

	for {
		fmt.Fprint(c.out, "\n--- ADMIN PANEL ---\n")
		fmt.Fprint(c.out, "1. Add New Bus Route\n")
		fmt.Fprint(c.out, "2. View All Routes\n")
		fmt.Fprint(c.out, "3. Delete All Data (Reset)\n")
		fmt.Fprint(c.out, "4. Back to Main Menu\n")
		choice, err := c.prompt("Enter Choice: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = c.addRoute(ctx)
		case "2":
			RenderRoutes(c.out, c.svc.Routes())
		case "3":
			if err := c.svc.Reset(ctx); err != nil {
				c.warnNotSaved(err)
			}
			fmt.Fprintln(c.out, "All data deleted.")
		case "4":
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid Choice.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) addRoute(ctx context.Context) error {
	name, err := c.prompt("Enter Bus Name (e.g. Volvo-900): ")
	if err != nil {
		return err
	}
	origin, err := c.prompt("Enter Source: ")
	if err != nil {
		return err
	}
	dest, err := c.prompt("Enter Destination: ")
	if err != nil {
		return err
	}
	raw, err := c.prompt("Enter Ticket Fare: ")
	if err != nil {
		return err
	}
	fare, perr := strconv.ParseFloat(raw, 32)
	if perr != nil {
		fmt.Fprintln(c.out, "Invalid fare.")
		return nil
	}

	r, err := c.svc.AddRoute(ctx, name, origin, dest, float32(fare))
	switch {
	case errors.Is(err, registry.ErrCapacityExceeded):
		fmt.Fprintln(c.out, "Memory Full! Cannot add more buses.")
		return nil
	case errors.Is(err, registry.ErrInvalidFare):
		fmt.Fprintln(c.out, "Invalid fare.")
		return nil
	case err != nil && !errors.Is(err, store.ErrIO):
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil
	}
	if err != nil {
		c.warnNotSaved(err)
	}
	fmt.Fprintf(c.out, "Bus Added Successfully! Bus ID is %d\n", r.ID)
	return nil
}

func (c *Console) userMenu(ctx context.Context) error {
	for {
		fmt.Fprint(c.out, "\n--- USER PANEL ---\n")
		fmt.Fprint(c.out, "1. View Available Buses\n")
		fmt.Fprint(c.out, "2. Book Ticket\n")
		fmt.Fprint(c.out, "3. Cancel Ticket\n")
		fmt.Fprint(c.out, "4. Back to Main Menu\n")
		choice, err := c.prompt("Enter Choice: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			RenderRoutes(c.out, c.svc.Routes())
		case "2":
			err = c.book(ctx)
		case "3":
			err = c.cancel(ctx)
		case "4":
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid Choice.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) book(ctx context.Context) error {
	RenderRoutes(c.out, c.svc.Routes())
	id, ok, err := c.promptInt("\nEnter Bus ID to Book: ")
	if err != nil || !ok {
		return err
	}
	route, err := c.svc.Route(int32(id))
	if err != nil {
		c.report(err, 0)
		return nil
	}
	if route.Available == 0 {
		c.report(booking.ErrSoldOut, 0)
		return nil
	}

	RenderSeatMap(c.out, route)
	seat, ok, err := c.promptInt(fmt.Sprintf("\nEnter Seat Number (1-%d): ", model.SeatCapacity))
	if err != nil || !ok {
		return err
	}
	rc, err := c.svc.Book(ctx, route.ID, seat)
	if err != nil && !errors.Is(err, store.ErrIO) {
		c.report(err, seat)
		return nil
	}
	fmt.Fprintf(c.out, "\nBooking Confirmed!\nBus: %s\nSeat: %d\nFare: %.2f\n", rc.RouteName, rc.Seat, rc.Amount)
	if err != nil {
		c.warnNotSaved(err)
	}
	return nil
}

func (c *Console) cancel(ctx context.Context) error {
	id, ok, err := c.promptInt("\nEnter Bus ID: ")
	if err != nil || !ok {
		return err
	}
	if _, err := c.svc.Route(int32(id)); err != nil {
		c.report(err, 0)
		return nil
	}
	seat, ok, err := c.promptInt("\nEnter Seat Number to Cancel: ")
	if err != nil || !ok {
		return err
	}
	rc, err := c.svc.Cancel(ctx, int32(id), seat)
	if err != nil && !errors.Is(err, store.ErrIO) {
		c.report(err, seat)
		return nil
	}
	fmt.Fprintf(c.out, "Ticket Cancelled Successfully. Refund Amount: %.2f\n", rc.Amount)
	if err != nil {
		c.warnNotSaved(err)
	}
	return nil
}

// report prints the user-facing message for a rejected operation.
func (c *Console) report(err error, seat int) {
	switch {
	case errors.Is(err, registry.ErrRouteNotFound):
		fmt.Fprintln(c.out, "Bus ID not found!")
	case errors.Is(err, booking.ErrSoldOut):
		fmt.Fprintln(c.out, "Sorry! This bus is fully booked.")
	case errors.Is(err, booking.ErrInvalidSeat):
		fmt.Fprintln(c.out, "Invalid Seat Number.")
	case errors.Is(err, booking.ErrAlreadyBooked):
		fmt.Fprintf(c.out, "Error: Seat %d is already booked!\n", seat)
	case errors.Is(err, booking.ErrNotBooked):
		fmt.Fprintf(c.out, "Error: Seat %d was not booked.\n", seat)
	default:
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
}

func (c *Console) warnNotSaved(err error) {
	fmt.Fprintf(c.out, "Warning: change kept in memory but not saved: %v\n", err)
}

// prompt prints label and returns the next trimmed input line.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// promptInt reads an integer.  ok is false, with a message printed, when
// the line is not a number.
func (c *Console) promptInt(label string) (n int, ok bool, err error) {
	line, err := c.prompt(label)
	if err != nil {
		return 0, false, err
	}
	v, perr := strconv.ParseInt(line, 10, 32)
	if perr != nil {
		fmt.Fprintln(c.out, "Invalid input, expected a number.")
		return 0, false, nil
	}
	return int(v), true, nil
}
