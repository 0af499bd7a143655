package gateway

import (
	"context"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Full-collection reads used by the bulk load and by reconciliation.

func (c *Client) FetchMenu(ctx context.Context) ([]domain.MenuItem, error) {
	return c.Menu.GetAll(ctx)
}

func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	return c.Categories.GetAll(ctx)
}

func (c *Client) FetchStaff(ctx context.Context) ([]domain.Staff, error) {
	return c.Staff.GetAll(ctx)
}

func (c *Client) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	return c.Orders.GetAll(ctx)
}

func (c *Client) FetchBills(ctx context.Context) ([]domain.Bill, error) {
	return c.Bills.GetAll(ctx)
}

func (c *Client) FetchTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return c.Transactions.GetAll(ctx)
}

func (c *Client) FetchCustomers(ctx context.Context) ([]domain.Customer, error) {
	return c.Customers.GetAll(ctx)
}

func (c *Client) FetchWaiterCalls(ctx context.Context) ([]domain.WaiterCall, error) {
	return c.WaiterCalls.GetAll(ctx)
}

func (c *Client) FetchExpenses(ctx context.Context) ([]domain.Expense, error) {
	return c.Expenses.GetAll(ctx)
}

// FetchSettings falls back to defaults when the backend has none stored.
func (c *Client) FetchSettings(ctx context.Context) (domain.Settings, error) {
	s, err := c.Settings.Get(ctx)
	if IsNotFound(err) {
		return domain.DefaultSettings(), nil
	}
	return s, err
}
