package locators

import (
	"encoding/json"
	"fmt"
)

// Inject renders a script template, JSON-encoding every argument so the
// result is a self-contained expression both automation backends can run.
func Inject(template string, args ...interface{}) string {
	encoded := make([]interface{}, 0, len(args))
	for _, arg := range args {
		payload, err := json.Marshal(arg)
		if err != nil {
			payload = []byte("null")
		}
		encoded = append(encoded, string(payload))
	}
	return fmt.Sprintf(template, encoded...)
}

// ExtractControlsScript tags every form control with a stable data attribute
// and returns its metadata: tag, type, current value, the combined field
// hint (label, aria text, placeholder, name, id), the option label for
// radio/checkbox controls, the question context (fieldset legend or aria),
// and select options. Hidden controls are omitted.
const ExtractControlsScript = `(function () {
  const textOf = (el) => (el && el.textContent ? el.textContent.trim() : "");
  const closestLabel = (el) => {
    if (el.id) {
      const label = document.querySelector("label[for=\"" + CSS.escape(el.id) + "\"]");
      if (label) return textOf(label);
    }
    const parent = el.closest("label");
    return parent ? textOf(parent) : "";
  };
  const labelledText = (el) => {
    const ids = el.getAttribute("aria-labelledby") || "";
    if (!ids) return "";
    return ids.split(" ").map((id) => textOf(document.getElementById(id))).join(" ");
  };
  const questionOf = (el) => {
    const fieldset = el.closest("fieldset");
    if (fieldset) {
      const legend = fieldset.querySelector("legend");
      if (legend) return textOf(legend);
    }
    const aria = el.getAttribute("aria-label") || "";
    if (aria) return aria;
    return labelledText(el);
  };
  const controls = [];
  const inputs = Array.from(document.querySelectorAll("input, textarea, select"));
  let index = 0;
  for (const el of inputs) {
    const type = (el.getAttribute("type") || "text").toLowerCase();
    if (type === "hidden") continue;
    const marker = "ctl-" + index;
    index += 1;
    el.setAttribute("data-autoapply-ctl", marker);
    const label = closestLabel(el);
    const hint = [label, el.getAttribute("aria-label") || "", el.placeholder || "", el.name || "", el.id || "", labelledText(el)]
      .map((v) => (v || "").trim())
      .filter((v) => v.length > 0)
      .join(" ");
    const options = el.tagName.toLowerCase() === "select"
      ? Array.from(el.options).map((o) => ({ value: o.value, text: (o.textContent || "").trim() }))
      : [];
    controls.push({
      selector: "[data-autoapply-ctl='" + marker + "']",
      tag: el.tagName.toLowerCase(),
      type: type,
      hint: hint,
      label: label,
      question: questionOf(el),
      value: typeof el.value === "string" ? el.value : "",
      checked: !!el.checked,
      options: options,
    });
  }
  return controls;
})()`

// SubmitSignalsScript evaluates the independent submit-readiness signals.
// Arguments: submit phrases, captcha selector, error banner selector.
const SubmitSignalsScript = `(function (phrases, captchaSelector, errorSelector) {
  const getText = (el) => (el.textContent || "").trim().toLowerCase();
  const buttons = Array.from(document.querySelectorAll("button, [role=\"button\"], input[type=\"submit\"]"));
  const submitButtons = buttons.filter((el) => {
    const text = getText(el);
    const aria = (el.getAttribute("aria-label") || "").toLowerCase();
    return phrases.some((p) => text.includes(p) || aria.includes(p));
  });
  const requiredMissing =
    document.querySelectorAll("[aria-invalid=\"true\"]").length > 0 ||
    document.querySelectorAll("[required]:not([value])").length > 0;
  const hasCaptcha = document.querySelectorAll(captchaSelector).length > 0;
  const errorBanner = document.querySelectorAll(errorSelector).length > 0;
  return {
    submitButtonCount: submitButtons.length,
    hasCaptcha: hasCaptcha,
    errorBanner: errorBanner,
    requiredMissing: requiredMissing,
  };
})(%s, %s, %s)`

// FindApplyTargetScript scans visible interactive elements for the apply
// vocabulary and tags the first match. Returns {selector, href, text} or null.
const FindApplyTargetScript = `(function (phrases) {
  const candidates = Array.from(
    document.querySelectorAll("a, button, input[type=submit], input[type=button], [role=button]")
  );
  const textOf = (el) => {
    const text = (el.textContent || "").trim();
    const aria = el.getAttribute("aria-label") || "";
    const title = el.getAttribute("title") || "";
    const value = el.value || "";
    const href = el.tagName.toLowerCase() === "a" ? el.href || "" : "";
    return (text + " " + aria + " " + title + " " + value + " " + href).trim().toLowerCase();
  };
  for (const el of candidates) {
    const text = textOf(el);
    if (!phrases.some((p) => (p === "apply" ? text === p : text.includes(p)))) continue;
    el.setAttribute("data-autoapply-target", "apply");
    return {
      selector: "[data-autoapply-target='apply']",
      href: el.tagName.toLowerCase() === "a" ? el.href || "" : "",
      text: (el.textContent || "").trim(),
    };
  }
  return null;
})(%s)`

// DeepApplyTargetScript repeats the apply scan while also walking open
// shadow roots, then climbs to the nearest clickable ancestor.
const DeepApplyTargetScript = `(function (phrases) {
  const clickable = "a, button, input[type=submit], input[type=button], [role=button]";
  const candidates = [];
  const collect = (root) => {
    const nodes = Array.from(root.querySelectorAll("*"));
    for (const node of nodes) {
      candidates.push(node);
      if (node.shadowRoot) collect(node.shadowRoot);
    }
  };
  collect(document);
  const normalize = (v) => (v || "").replace(/\s+/g, " ").trim().toLowerCase();
  for (const el of candidates) {
    const text = normalize(el.textContent);
    const aria = normalize(el.getAttribute("aria-label"));
    const title = normalize(el.getAttribute("title"));
    const href = el.tagName.toLowerCase() === "a" ? el.href || "" : "";
    const combined = (text + " " + aria + " " + title + " " + href).trim();
    if (!phrases.some((p) => (p === "apply" ? combined === p : combined.includes(p)))) continue;
    let target = el;
    if (!(el.matches && el.matches(clickable))) {
      target = el.closest(clickable);
    }
    if (!target) continue;
    target.setAttribute("data-autoapply-target", "apply");
    return {
      selector: "[data-autoapply-target='apply']",
      href: target.tagName.toLowerCase() === "a" ? target.href || "" : "",
      text: (target.textContent || "").trim(),
    };
  }
  return null;
})(%s)`

// ClickableInventoryScript enumerates clickable elements for audit.
const ClickableInventoryScript = `(function () {
  const elements = Array.from(document.querySelectorAll("a, button, input[type=submit], input[type=button]"));
  const normalize = (v) => (v || "").replace(/\s+/g, " ").trim();
  return elements
    .map((el) => ({
      tag: el.tagName.toLowerCase(),
      text: normalize(el.textContent),
      aria: normalize(el.getAttribute("aria-label")),
      title: normalize(el.getAttribute("title")),
    }))
    .filter((item) => item.text || item.aria || item.title)
    .slice(0, 20);
})()`

// FrameInventoryScript enumerates embedded frames for audit.
const FrameInventoryScript = `(function () {
  return Array.from(document.querySelectorAll("iframe"))
    .map((frame) => ({ src: frame.src || "", title: frame.title || "" }))
    .slice(0, 10);
})()`

// EmbeddedApplyURLScript searches inline script text and anchor hrefs for an
// embedded apply URL matching the given patterns.
const EmbeddedApplyURLScript = `(function (patterns) {
  const urls = new Set();
  const collect = (text) => {
    const regex = /https?:\/\/[^\s"'<>]+/gi;
    let match;
    while ((match = regex.exec(text))) urls.add(match[0]);
  };
  for (const script of Array.from(document.querySelectorAll("script"))) {
    if (script.textContent) collect(script.textContent);
  }
  for (const anchor of Array.from(document.querySelectorAll("a[href]"))) {
    if (anchor.href) urls.add(anchor.href);
  }
  const candidates = Array.from(urls);
  const preferred = candidates.find((url) => {
    const lower = url.toLowerCase();
    return patterns.some((p) => lower.includes(p));
  });
  if (preferred) return preferred;
  const origin = window.location.origin;
  return candidates.find((url) => url.startsWith(origin) && url.includes("job/?")) || null;
})(%s)`

// FrameApplyURLScript returns the first frame source hosted on the ATS.
const FrameApplyURLScript = `(function (domains) {
  for (const frame of Array.from(document.querySelectorAll("iframe"))) {
    const src = (frame.src || "").toLowerCase();
    if (domains.some((d) => src.includes(d))) return frame.src;
  }
  return null;
})(%s)`

// FormPresentScript reports whether an application form (or bare file input)
// is on the page.
const FormPresentScript = `(function () {
  return Boolean(document.querySelector("form")) || Boolean(document.querySelector("input[type=file]"));
})()`

const ScrollToTopScript = `window.scrollTo(0, 0)`

const ScrollToBottomScript = `window.scrollTo(0, document.body.scrollHeight)`

// NextButtonScript tags the first step-advance button that is not a submit
// control. Arguments: next phrases, submit phrases.
const NextButtonScript = `(function (nextPhrases, submitPhrases) {
  const buttons = Array.from(document.querySelectorAll("button, a"));
  const getText = (el) => (el.textContent || "").trim().toLowerCase();
  const next = buttons.find((el) => {
    const text = getText(el);
    return nextPhrases.some((p) => text.includes(p)) && !submitPhrases.some((p) => text.includes(p));
  });
  if (!next) return null;
  next.setAttribute("data-autoapply-next", "true");
  return "[data-autoapply-next='true']";
})(%s, %s)`

// SubmitButtonScript tags the submit control for a real submission click.
const SubmitButtonScript = `(function (phrases) {
  const getText = (el) => (el.textContent || "").trim().toLowerCase();
  const buttons = Array.from(document.querySelectorAll("button, [role=\"button\"], input[type=\"submit\"]"));
  const submit = buttons.find((el) => {
    const text = getText(el);
    const aria = (el.getAttribute("aria-label") || "").toLowerCase();
    return phrases.some((p) => text.includes(p) || aria.includes(p));
  });
  if (!submit) return null;
  submit.setAttribute("data-autoapply-submit", "true");
  return "[data-autoapply-submit='true']";
})(%s)`

// SelectOptionScript sets a select control to the given option value and
// dispatches a change event. Arguments: selector, option value.
const SelectOptionScript = `(function (selector, value) {
  const el = document.querySelector(selector);
  if (!el) return false;
  el.value = value;
  el.dispatchEvent(new Event("change", { bubbles: true }));
  return true;
})(%s, %s)`

// CheckControlScript checks a radio/checkbox and dispatches a change event.
const CheckControlScript = `(function (selector) {
  const el = document.querySelector(selector);
  if (!el) return false;
  el.checked = true;
  el.dispatchEvent(new Event("change", { bubbles: true }));
  return true;
})(%s)`

// SetValueScript sets a text control's value and dispatches input/change so
// client-side validation notices the write.
const SetValueScript = `(function (selector, value) {
  const el = document.querySelector(selector);
  if (!el) return false;
  el.value = value;
  el.dispatchEvent(new Event("input", { bubbles: true }));
  el.dispatchEvent(new Event("change", { bubbles: true }));
  return true;
})(%s, %s)`

// CurrentURLScript returns the page's resolved location.
const CurrentURLScript = `window.location.href`

// TagFileInputScript tags the first file-upload control for the resume.
const TagFileInputScript = `(function () {
  const input = document.querySelector("input[type=file]");
  if (!input) return null;
  input.setAttribute("data-autoapply-file", "resume");
  return "input[type=file][data-autoapply-file='resume']";
})()`

// IndeedListingCardsScript scrapes search result cards across the layout
// generations Indeed serves.
const IndeedListingCardsScript = `(function () {
  const selectors = ["div.job_seen_beacon", "div.jobsearch-SerpJobCard", "div.tapItem", "div[data-jk]"];
  const cards = [];
  for (const selector of selectors) {
    for (const card of Array.from(document.querySelectorAll(selector))) {
      if (!cards.includes(card)) cards.push(card);
    }
  }
  const textOf = (el) => (el && el.textContent ? el.textContent.trim() : "");
  const items = [];
  for (const card of cards) {
    const link =
      card.querySelector("a.jcs-JobTitle") ||
      card.querySelector("h2.jobTitle a") ||
      card.querySelector("a[data-jk]");
    const title = textOf(link);
    const href = link ? link.getAttribute("href") || "" : "";
    const jobKey = (link ? link.getAttribute("data-jk") : "") || card.getAttribute("data-jk") || "";
    if (!title || (!href && !jobKey)) continue;
    items.push({
      url: href,
      title: title,
      company:
        textOf(card.querySelector(".companyName")) ||
        textOf(card.querySelector(".company")) ||
        textOf(card.querySelector("[data-testid='company-name']")),
      location:
        textOf(card.querySelector(".companyLocation")) ||
        textOf(card.querySelector(".location")) ||
        textOf(card.querySelector("[data-testid='text-location']")),
      jobKey: jobKey,
    });
  }
  return items;
})()`

// IndeedApplyFlowScript classifies what the apply click opened.
const IndeedApplyFlowScript = `(function () {
  const hasModal =
    Boolean(document.querySelector("[role='dialog']")) ||
    Boolean(document.querySelector(".icl-Modal")) ||
    Boolean(document.querySelector("[data-testid='apply-modal']"));
  const hasIframe = Boolean(document.querySelector("iframe[src*='indeed']"));
  if (hasIframe && hasModal) return "modal-iframe";
  if (hasModal) return "modal";
  if (document.querySelector("form")) return "inline-form";
  return "unknown";
})()`

// VerificationChallengeScript reports whether an interstitial verification
// wall is blocking the page.
const VerificationChallengeScript = `(function () {
  const text = document.body && document.body.textContent ? document.body.textContent.toLowerCase() : "";
  return text.includes("additional verification") || text.includes("cloudflare");
})()`
