package web

// dashboardHTML is the single-page dashboard served at /. It talks to the
// JSON API only; no template rendering happens server-side.
const dashboardHTML = `<!doctype html>
<html lang="fr">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>ViagoScrap Dashboard</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <style>
    :root { --bg:#eef2ff; --ink:#0f172a; --muted:#64748b; --card:#ffffff; --line:#dbe4ef; --primary:#0b5fff; --primary2:#00a6fb; }
    * { box-sizing: border-box; }
    body { margin:0; font-family:"Trebuchet MS","Segoe UI",sans-serif; color:var(--ink); background:var(--bg); }
    .wrap { max-width: 1200px; margin: 2rem auto; padding: 0 1rem; }
    .card { background:var(--card); border:1px solid var(--line); border-radius:18px; box-shadow:0 18px 40px rgba(15,23,42,.08); padding:1rem; margin-top:1rem; }
    .row { display:grid; gap:1rem; grid-template-columns:1fr; margin-top:1rem; }
    .cluster { display:flex; flex-wrap:wrap; gap:.55rem; align-items:center; }
    input, select, button { border-radius: 10px; border:1px solid #cbd5e1; padding:.58rem .75rem; font-size:.95rem; }
    button { border:none; color:#fff; font-weight:700; cursor:pointer; background:linear-gradient(140deg,var(--primary),var(--primary2)); }
    button.ghost { background:#fff; color:#1d4ed8; border:1px solid #bfdbfe; }
    button[disabled] { opacity:.55; cursor:not-allowed; }
    table { width:100%; border-collapse:collapse; }
    th, td { text-align:left; border-bottom:1px solid #eef2f7; padding:.55rem; font-size:.92rem; }
    .muted { color:var(--muted); font-size:.9rem; }
    .status { display:inline-block; margin-top:.6rem; padding:.45rem .7rem; border-radius:999px; background:#e2e8f0; font-weight:700; font-size:.83rem; }
    .status.ok { background:#dcfce7; color:#166534; }
    .status.error { background:#fee2e2; color:#991b1b; }
    .status.busy { background:#dbeafe; color:#1d4ed8; }
    .chart-box { min-height:370px; }
    @media (min-width: 960px) { .row { grid-template-columns:1fr 1fr; } }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>ViagoScrap Dashboard</h1>
    <p class="muted" id="meta"></p>
    <span id="status" class="status">Pret</span>
    <div class="card">
      <h3>Controles</h3>
      <div class="cluster">
        <input id="name" placeholder="Nom (ex: Tomorrowland)" />
        <input id="url" style="min-width:420px;max-width:100%;" placeholder="https://..." />
        <button id="btnAdd" onclick="addEvent()">Ajouter</button>
        <button id="btnScrapeAll" onclick="scrapeAll()">Scraper maintenant</button>
      </div>
      <div class="cluster" style="margin-top:.65rem;">
        <label for="intervalMin"><strong>Actualisation auto (min)</strong></label>
        <input id="intervalMin" type="number" min="1" max="1440" style="width:110px;" />
        <button id="btnInterval" class="ghost" onclick="updateInterval()">Appliquer</button>
      </div>
    </div>
    <div class="card">
      <h3>Notifications</h3>
      <div class="cluster">
        <input id="subEmail" placeholder="email@exemple.com" />
        <select id="subEvent"></select>
        <button id="btnSub" class="ghost" onclick="addSubscriber()">Ajouter email</button>
      </div>
      <table id="subs" style="margin-top:.65rem;"></table>
    </div>
    <div class="row">
      <div class="card">
        <h3>Events suivis</h3>
        <table id="events"></table>
      </div>
      <div class="card chart-box">
        <h3>Evolution du prix min</h3>
        <select id="eventSelect" onchange="refreshChart()"></select>
        <canvas id="chart"></canvas>
      </div>
    </div>
  </div>
<script>
let chart = null;

function setStatus(message, kind='') {
  const el = document.getElementById('status');
  el.textContent = message;
  el.className = 'status' + (kind ? ' ' + kind : '');
}

function setBusyButton(btn, busyText, finalText) {
  if (!btn) return () => {};
  btn.disabled = true;
  btn.textContent = busyText;
  return () => { btn.disabled = false; btn.textContent = finalText; };
}

async function api(path, opts={}) {
  const res = await fetch(path, { headers: {'Content-Type':'application/json'}, cache: 'no-store', ...opts });
  if (!res.ok) throw new Error(await res.text());
  return res.json();
}

async function loadMeta() {
  const cfg = await api('/api/config?ts=' + Date.now());
  document.getElementById('meta').textContent = 'DB: ' + cfg.db_path + ' | Auto: ' + cfg.scrape_interval_min + ' min';
  document.getElementById('intervalMin').value = cfg.scrape_interval_min;
}

async function loadEvents() {
  const events = await api('/api/events?ts=' + Date.now());
  const select = document.getElementById('eventSelect');
  const subSelect = document.getElementById('subEvent');
  const selectedBefore = select.value;
  const table = document.getElementById('events');
  table.innerHTML = '<tr><th>ID</th><th>Nom</th><th>Prix min</th><th>Dernier scrape</th><th>Action</th></tr>';
  select.innerHTML = '';
  subSelect.innerHTML = '<option value="">Tous les events</option>';
  events.forEach((e) => {
    const tr = document.createElement('tr');
    tr.innerHTML = '<td>' + e.id + '</td><td>' + e.name + '</td><td>' + (e.lowest_price_raw ?? '-') +
      '</td><td>' + (e.last_scraped_at ?? '-') + '</td><td><button class="ghost" onclick="scrapeOne(' + e.id + ', this)">Scrape</button></td>';
    table.appendChild(tr);
    const opt = document.createElement('option');
    opt.value = e.id;
    opt.textContent = e.id + ' - ' + e.name;
    select.appendChild(opt);
    subSelect.appendChild(opt.cloneNode(true));
  });
  if (events.length) {
    if (selectedBefore && events.some((e) => String(e.id) === String(selectedBefore))) {
      select.value = selectedBefore;
    }
    await refreshChart();
  }
  await loadSubscribers();
}

async function loadSubscribers() {
  const rows = await api('/api/subscribers?ts=' + Date.now());
  const table = document.getElementById('subs');
  table.innerHTML = '<tr><th>Email</th><th>Scope</th><th>Action</th></tr>';
  rows.forEach((s) => {
    const tr = document.createElement('tr');
    tr.innerHTML = '<td>' + s.email + '</td><td>' + (s.event_id ?? 'Tous') +
      '</td><td><button class="ghost" onclick="removeSubscriber(' + s.id + ')">Retirer</button></td>';
    table.appendChild(tr);
  });
}

async function addEvent() {
  const name = document.getElementById('name').value.trim();
  const url = document.getElementById('url').value.trim();
  if (!name || !url) return setStatus('Nom + URL requis', 'error');
  const done = setBusyButton(document.getElementById('btnAdd'), 'Ajout...', 'Ajouter');
  setStatus('Ajout en cours...', 'busy');
  try {
    await api('/api/events', { method: 'POST', body: JSON.stringify({ name, url, active: true }) });
    document.getElementById('name').value = '';
    await loadEvents();
    setStatus('Event ajoute', 'ok');
  } catch (e) {
    setStatus('Erreur: ' + e.message, 'error');
  } finally { done(); }
}

async function scrapeOne(id, btn=null) {
  const done = setBusyButton(btn, 'Scrape...', 'Scrape');
  setStatus('Scrape ' + id + '...', 'busy');
  try {
    await api('/api/events/' + id + '/scrape', { method: 'POST' });
    document.getElementById('eventSelect').value = String(id);
    await loadEvents();
    await refreshChart();
    setStatus('Scrape ' + id + ' termine', 'ok');
  } catch (e) {
    setStatus('Erreur scrape: ' + e.message, 'error');
  } finally { done(); }
}

async function scrapeAll() {
  const done = setBusyButton(document.getElementById('btnScrapeAll'), 'Scrape en cours...', 'Scraper maintenant');
  setStatus('Scrape global en cours...', 'busy');
  try {
    await api('/api/scrape-all', { method: 'POST' });
    await loadEvents();
    await refreshChart();
    setStatus('Scrape global termine', 'ok');
  } catch (e) {
    setStatus('Erreur globale: ' + e.message, 'error');
  } finally { done(); }
}

async function updateInterval() {
  const val = parseInt(document.getElementById('intervalMin').value || '0', 10);
  if (!val || val < 1) return setStatus('Intervalle invalide', 'error');
  const done = setBusyButton(document.getElementById('btnInterval'), 'Mise a jour...', 'Appliquer');
  try {
    await api('/api/config/interval', { method: 'POST', body: JSON.stringify({ scrape_interval_min: val }) });
    await loadMeta();
    setStatus('Periode auto: ' + val + ' min', 'ok');
  } catch (e) {
    setStatus('Erreur periode: ' + e.message, 'error');
  } finally { done(); }
}

async function addSubscriber() {
  const email = document.getElementById('subEmail').value.trim();
  const eventRaw = document.getElementById('subEvent').value;
  const event_id = eventRaw ? parseInt(eventRaw, 10) : null;
  if (!email || !email.includes('@')) return setStatus('Email invalide', 'error');
  const done = setBusyButton(document.getElementById('btnSub'), 'Ajout...', 'Ajouter email');
  try {
    await api('/api/subscribers', { method: 'POST', body: JSON.stringify({ email, event_id }) });
    document.getElementById('subEmail').value = '';
    await loadSubscribers();
    setStatus('Email ajoute aux notifications', 'ok');
  } catch (e) {
    setStatus('Erreur notif: ' + e.message, 'error');
  } finally { done(); }
}

async function removeSubscriber(id) {
  try {
    await api('/api/subscribers/' + id, { method: 'DELETE' });
    await loadSubscribers();
    setStatus('Abonnement retire', 'ok');
  } catch (e) {
    setStatus('Erreur retrait: ' + e.message, 'error');
  }
}

function prettyDate(iso) {
  const d = new Date(iso);
  if (Number.isNaN(d.getTime())) return iso;
  return d.toLocaleString('fr-FR', { day:'2-digit', month:'2-digit', hour:'2-digit', minute:'2-digit', second:'2-digit' });
}

async function refreshChart() {
  const id = document.getElementById('eventSelect').value;
  if (!id) return;
  const points = await api('/api/events/' + id + '/chart?ts=' + Date.now());
  if (!points.length) {
    if (chart) { chart.destroy(); chart = null; }
    setStatus('Pas encore de donnees', 'busy');
    return;
  }
  const labels = points.map((p) => prettyDate(p.scraped_at));
  const data = points.map((p) => p.min_price);
  if (chart) chart.destroy();
  const ctx = document.getElementById('chart').getContext('2d');
  chart = new Chart(ctx, {
    type: 'line',
    data: { labels, datasets: [{ label: 'Prix min', data, borderColor:'#0b5fff', fill:false, tension:.35, borderWidth:3, pointRadius:3 }] },
    options: {
      responsive: true,
      interaction: { mode:'nearest', axis:'x', intersect:false },
      scales: {
        x: { grid: { display:false }, ticks: { maxRotation:0, autoSkip:true, maxTicksLimit:7 } },
        y: { beginAtZero:false }
      }
    }
  });
}

async function refreshDataSilently() {
  try { await loadMeta(); await loadEvents(); } catch (_) {}
}

loadMeta().then(loadEvents);
setInterval(refreshDataSilently, 15000);
</script>
</body></html>`
