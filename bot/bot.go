package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"coffee-telegram/config"
	"coffee-telegram/models"
	"coffee-telegram/notify"
	"coffee-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the ordering surface: it renders the menu, the per-chat cart,
// and the shared order history, and forwards button presses into the
// core components.
type Bot struct {
	api        *tgbotapi.BotAPI
	messageBot *tgbotapi.BotAPI // bot for sending order notifications to the admin (MESSAGE_TOKEN)
	cfg        *config.Config
	log        *slog.Logger

	catalog  *services.Catalog
	history  *services.History
	notifier *notify.Publisher

	// Per-chat state. Touched only from the update loop, which handles
	// updates one at a time, so no locking is needed.
	carts      map[int64]*services.Cart
	orderTypes map[int64]*services.OrderTypeSelector
}

func New(cfg *config.Config, log *slog.Logger, catalog *services.Catalog, history *services.History, notifier *notify.Publisher) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	b := &Bot{
		api:        api,
		cfg:        cfg,
		log:        log,
		catalog:    catalog,
		history:    history,
		notifier:   notifier,
		carts:      make(map[int64]*services.Cart),
		orderTypes: make(map[int64]*services.OrderTypeSelector),
	}
	if cfg.Telegram.MessageToken != "" {
		messageBot, err := tgbotapi.NewBotAPI(cfg.Telegram.MessageToken)
		if err != nil {
			log.Warn("message bot init failed", "error", err)
		} else {
			b.messageBot = messageBot
		}
	}
	return b, nil
}

func (b *Bot) cart(chatID int64) *services.Cart {
	c, ok := b.carts[chatID]
	if !ok {
		c = services.NewCart(b.catalog)
		b.carts[chatID] = c
	}
	return c
}

func (b *Bot) orderType(chatID int64) *services.OrderTypeSelector {
	s, ok := b.orderTypes[chatID]
	if !ok {
		s = services.NewOrderTypeSelector()
		b.orderTypes[chatID] = s
	}
	return s
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: "Welcome"},
			{Command: "menu", Description: "Coffee menu"},
			{Command: "cart", Description: "Your cart"},
			{Command: "history", Description: "Past orders"},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

func (b *Bot) Start() {
	// Register bot command menu (Telegram client shows these in the input menu)
	_ = b.setBotCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallback(update.CallbackQuery)
			continue
		}
		if update.Message == nil {
			continue
		}
		msg := update.Message

		switch strings.TrimSpace(msg.Text) {
		case "/start":
			b.handleStart(msg.Chat.ID)
		case "/menu":
			b.sendMenu(msg.Chat.ID)
		case "/cart":
			b.sendCart(msg.Chat.ID)
		case "/history":
			b.sendHistory(msg.Chat.ID)
		}
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	data := cq.Data

	switch {
	case data == "menu":
		b.answer(cq.ID, "")
		b.sendMenu(chatID)
	case data == "cart":
		b.answer(cq.ID, "")
		b.sendCart(chatID)
	case data == "history":
		b.answer(cq.ID, "")
		b.sendHistory(chatID)
	case strings.HasPrefix(data, "add:"):
		b.handleAdd(cq, chatID, strings.TrimPrefix(data, "add:"))
	case strings.HasPrefix(data, "inc:"):
		b.handleQuantity(cq, chatID, strings.TrimPrefix(data, "inc:"), +1)
	case strings.HasPrefix(data, "dec:"):
		b.handleQuantity(cq, chatID, strings.TrimPrefix(data, "dec:"), -1)
	case strings.HasPrefix(data, "rm:"):
		b.handleRemove(cq, chatID, strings.TrimPrefix(data, "rm:"))
	case strings.HasPrefix(data, "type:"):
		b.orderType(chatID).Set(strings.TrimPrefix(data, "type:"))
		b.answer(cq.ID, "Order type updated.")
		b.editCart(cq, chatID)
	case data == "checkout":
		b.handleCheckout(cq, chatID)
	default:
		b.answer(cq.ID, "")
	}
}

func (b *Bot) handleStart(chatID int64) {
	b.send(chatID, "Welcome to Jylly Coffee! Browse the menu and build your order.")
	b.sendMenu(chatID)
}

func (b *Bot) handleAdd(cq *tgbotapi.CallbackQuery, chatID int64, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.answer(cq.ID, "")
		return
	}
	if err := b.cart(chatID).AddItem(id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			b.answer(cq.ID, "That item is not on the menu.")
			return
		}
		b.log.Error("add item", "chat_id", chatID, "item_id", id, "error", err)
		b.answer(cq.ID, "Something went wrong.")
		return
	}
	item, _ := b.catalog.ByID(id)
	b.answer(cq.ID, item.Name+" added to cart.")
}

func (b *Bot) handleQuantity(cq *tgbotapi.CallbackQuery, chatID int64, idStr string, delta int) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.answer(cq.ID, "")
		return
	}
	if !b.cart(chatID).ChangeQuantity(id, delta) {
		b.answer(cq.ID, "Not in your cart.")
		return
	}
	b.answer(cq.ID, "")
	b.editCart(cq, chatID)
}

func (b *Bot) handleRemove(cq *tgbotapi.CallbackQuery, chatID int64, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.answer(cq.ID, "")
		return
	}
	b.cart(chatID).RemoveItem(id)
	b.answer(cq.ID, "Removed.")
	b.editCart(cq, chatID)
}

func (b *Bot) handleCheckout(cq *tgbotapi.CallbackQuery, chatID int64) {
	ctx := context.Background()
	order, err := services.PlaceOrder(ctx, b.cart(chatID), b.orderType(chatID).Value(), b.history, time.Now)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCart) {
			b.answer(cq.ID, "Your cart is empty.")
			return
		}
		b.log.Error("place order", "chat_id", chatID, "error", err)
		b.answer(cq.ID, "Could not place the order, please try again.")
		return
	}
	b.answer(cq.ID, "")
	b.send(chatID, fmt.Sprintf("Order placed!\nType: %s\nTotal: %s", order.Type, models.FormatPrice(order.Total)))
	b.editCart(cq, chatID)
	b.notifier.OrderPlaced(ctx, *order)
	b.notifyAdmin(*order)
}

// notifyAdmin sends the placed order to the admin chat via the message
// bot, if both are configured.
func (b *Bot) notifyAdmin(order models.Order) {
	if b.messageBot == nil || b.cfg.Telegram.AdminID == 0 {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "New order #%d (%s)\n", order.ID, order.Type)
	for _, l := range order.Lines {
		fmt.Fprintf(&sb, "%s ×%d\n", l.Name, l.Qty)
	}
	fmt.Fprintf(&sb, "Total: %s", models.FormatPrice(order.Total))
	msg := tgbotapi.NewMessage(b.cfg.Telegram.AdminID, sb.String())
	if _, err := b.messageBot.Send(msg); err != nil {
		b.log.Error("notify admin", "order_id", order.ID, "error", err)
	}
}

func (b *Bot) sendMenu(chatID int64) {
	var sb strings.Builder
	sb.WriteString("Our menu:\n")
	for _, it := range b.catalog.Items() {
		fmt.Fprintf(&sb, "\n%s — %s\n%s\n", it.Name, models.FormatPrice(it.Price), it.Description)
	}
	b.sendWithInline(chatID, sb.String(), b.menuKeyboard())
}

func (b *Bot) menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range b.catalog.Items() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Add %s (%s)", it.Name, models.FormatPrice(it.Price)),
				fmt.Sprintf("add:%d", it.ID),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cart", "cart"),
		tgbotapi.NewInlineKeyboardButtonData("Past orders", "history"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// cartView builds the cart message text and keyboard for a chat.
func (b *Bot) cartView(chatID int64) (string, tgbotapi.InlineKeyboardMarkup) {
	cart := b.cart(chatID)
	if cart.IsEmpty() {
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Menu", "menu"),
			),
		)
		return "Your cart is empty.", kb
	}

	var sb strings.Builder
	sb.WriteString("Your cart:\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range cart.Lines() {
		fmt.Fprintf(&sb, "\n%s ×%d — %s each", l.Item.Name, l.Qty, models.FormatPrice(l.Item.Price))
		id := l.Item.ID
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s ×%d", l.Item.Name, l.Qty), "noop"),
			tgbotapi.NewInlineKeyboardButtonData("−", fmt.Sprintf("dec:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("+", fmt.Sprintf("inc:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("×", fmt.Sprintf("rm:%d", id)),
		))
	}
	fmt.Fprintf(&sb, "\n\nTotal: %s\nOrder type: %s", models.FormatPrice(cart.Total()), b.orderType(chatID).Value())

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Dine In", "type:"+services.OrderTypeDineIn),
			tgbotapi.NewInlineKeyboardButtonData("Takeout", "type:"+services.OrderTypeTakeout),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Checkout", "checkout"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Menu", "menu"),
			tgbotapi.NewInlineKeyboardButtonData("Past orders", "history"),
		),
	)
	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) sendCart(chatID int64) {
	text, kb := b.cartView(chatID)
	b.sendWithInline(chatID, text, kb)
}

// editCart re-renders the cart in place of the message the pressed
// button belongs to.
func (b *Bot) editCart(cq *tgbotapi.CallbackQuery, chatID int64) {
	text, kb := b.cartView(chatID)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, text, kb)
	if _, err := b.api.Send(edit); err != nil && !strings.Contains(err.Error(), "not modified") {
		b.log.Error("edit cart message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendHistory(chatID int64) {
	orders := b.history.Orders()
	if len(orders) == 0 {
		b.send(chatID, "No past orders yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Past orders (newest first):\n")
	for _, o := range orders {
		date := time.UnixMilli(o.Timestamp).Format("Jan 2, 2006 15:04")
		fmt.Fprintf(&sb, "\n%s — %s — %s\n", date, o.Type, models.FormatPrice(o.Total))
		for _, l := range o.Lines {
			fmt.Fprintf(&sb, "  • %s ×%d\n", l.Name, l.Qty)
		}
	}
	b.send(chatID, sb.String())
}

// answer sends a short toast for the callback (no new message).
func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("answer callback", "error", err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}
